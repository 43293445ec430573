package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/bchotg/pkg/api"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

func getInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "getinfo",
		Usage:     "show the public key and addresses of key files",
		ArgsUsage: "<keyfile>...",
		Action:    runGetInfo,
	}
}

func runGetInfo(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.Wrap(txerr.ErrInvalidFormat, "getinfo: at least one key file required")
	}

	w := c.App.Writer
	for i, path := range c.Args().Slice() {
		wif, err := readKeyFile(path)
		if err != nil {
			return err
		}
		info, err := api.GetInfo(wif)
		if err != nil {
			return errors.Wrapf(err, "%s", path)
		}
		dump(c, path, info)

		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "key file:   %s\n", path)
		fmt.Fprintf(w, "network:    %s\n", info.Net)
		fmt.Fprintf(w, "public key: %s\n", info.PubKey)
		fmt.Fprintf(w, "cashaddr:   %s\n", info.Addresses.CashAddr)
		fmt.Fprintf(w, "legacy:     %s\n", info.Addresses.Legacy)
	}
	return nil
}

// readKeyFile returns the first line of path with surrounding whitespace
// removed. The rest of the file is ignored.
func readKeyFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "key file")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", errors.Wrapf(err, "key file %s", path)
		}
		return "", errors.Wrapf(txerr.ErrInvalidFormat, "key file %s: empty", path)
	}
	line := strings.TrimSpace(sc.Text())
	if line == "" {
		return "", errors.Wrapf(txerr.ErrInvalidFormat, "key file %s: first line is blank", path)
	}
	return line, nil
}
