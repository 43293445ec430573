package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/bchotg/pkg/api"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

func spendCommand() *cli.Command {
	return &cli.Command{
		Name:  "spend",
		Usage: "sweep UTXOs to one destination and print the signed transaction",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "key",
				Usage: "key file holding a WIF private key on its first line (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "input",
				Usage: "UTXO to spend as TXID:VOUT:AMOUNT[:KEY#], amount in BCH (repeatable)",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "destination address or bitcoincash: payment URI",
			},
			&cli.StringFlag{
				Name:  "fee",
				Usage: "fee in BCH",
			},
			&cli.StringFlag{
				Name:  "plan",
				Usage: "YAML file describing keys, inputs, destination and fee",
			},
		},
		Action: runSpend,
	}
}

func runSpend(c *cli.Context) error {
	net, err := network(c)
	if err != nil {
		return err
	}

	req, err := spendRequest(c)
	if err != nil {
		return err
	}
	req.Net = net
	dump(c, "spend request", req.Inputs)

	res, err := api.Spend(req)
	if err != nil {
		return err
	}
	dump(c, "spend result", res)

	for _, warning := range res.Warnings {
		logrus.Warn(warning)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "total input: %s BCH\n", units.FormatBCH(res.InputTotal))
	fmt.Fprintf(w, "fee:         %s BCH\n", units.FormatBCH(res.Fee))
	fmt.Fprintf(w, "destination: %s\n", res.Destination)
	fmt.Fprintf(w, "amount:      %s BCH\n", units.FormatBCH(res.Amount))
	fmt.Fprintf(w, "txid:        %s\n", res.TxID)
	fmt.Fprintf(w, "raw transaction:\n%s\n", res.Hex())
	return nil
}

// spendRequest assembles the request from either --plan or the individual
// flags.
func spendRequest(c *cli.Context) (*api.SpendRequest, error) {
	if path := c.String("plan"); path != "" {
		if c.IsSet("input") || c.IsSet("dest") || c.IsSet("fee") {
			return nil, errors.Wrap(txerr.ErrInvalidFormat, "--plan excludes --input, --dest and --fee")
		}
		plan, err := loadPlan(path)
		if err != nil {
			return nil, err
		}
		keyFiles := plan.Keys
		if len(keyFiles) == 0 {
			keyFiles = c.StringSlice("key")
		}
		wifs, err := readKeyFiles(keyFiles)
		if err != nil {
			return nil, err
		}
		return plan.request(wifs)
	}

	wifs, err := readKeyFiles(c.StringSlice("key"))
	if err != nil {
		return nil, err
	}
	if c.String("dest") == "" {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "--dest required")
	}
	if !c.IsSet("fee") {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "--fee required")
	}
	fee, err := units.ParseBCH(c.String("fee"))
	if err != nil {
		return nil, errors.Wrap(err, "--fee")
	}

	req := &api.SpendRequest{
		Keys:        wifs,
		Destination: c.String("dest"),
		Fee:         fee,
	}
	for _, arg := range c.StringSlice("input") {
		in, err := parseInput(arg, len(wifs))
		if err != nil {
			return nil, err
		}
		req.Inputs = append(req.Inputs, in)
	}
	return req, nil
}

func readKeyFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "at least one --key required")
	}
	wifs := make([]string, len(paths))
	for i, path := range paths {
		wif, err := readKeyFile(path)
		if err != nil {
			return nil, err
		}
		wifs[i] = wif
	}
	return wifs, nil
}

// parseInput parses TXID:VOUT:AMOUNT[:KEY#].
func parseInput(arg string, keys int) (api.Input, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return api.Input{}, errors.Wrapf(txerr.ErrInvalidFormat,
			"input %q: want TXID:VOUT:AMOUNT[:KEY#]", arg)
	}

	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return api.Input{}, errors.Wrapf(txerr.ErrInvalidFormat, "input %q: vout: %v", arg, err)
	}
	amount, err := units.ParseBCH(parts[2])
	if err != nil {
		return api.Input{}, errors.Wrapf(err, "input %q", arg)
	}

	n := 0
	if len(parts) == 4 {
		n, err = strconv.Atoi(parts[3])
		if err != nil || n < 1 {
			return api.Input{}, errors.Wrapf(txerr.ErrInvalidFormat, "input %q: key number %q", arg, parts[3])
		}
	}
	key, err := keyIndex(n, keys)
	if err != nil {
		return api.Input{}, errors.Wrapf(err, "input %q", arg)
	}

	return api.Input{
		TxID:   parts[0],
		Vout:   uint32(vout),
		Amount: amount,
		Key:    key,
	}, nil
}
