// bchotg CLI - Bitcoin Cash off the grid
//
// This CLI builds and signs Bitcoin Cash P2PKH transactions on a machine
// that never touches the network. The raw transaction it prints is
// broadcast from somewhere else.
//
// Example usage:
//
//	# Show the public key and addresses of a key file
//	bchotg getinfo key.wif
//
//	# Sweep one UTXO to an address, paying a 0.00001 BCH fee
//	bchotg spend --key key.wif --input <txid>:0:0.001 --dest bitcoincash:qp... --fee 0.00001
//
//	# Decode a raw transaction, checking fee and signatures
//	bchotg decode <rawhex> 0.001
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/bchotg/pkg/netparams"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bchotg",
		Usage:   "build and sign Bitcoin Cash transactions offline",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "network",
				Aliases: []string{"n"},
				Usage:   "mainnet, testnet or regtest",
				Value:   netparams.MainNet.Name,
				EnvVars: []string{"BCHOTG_NETWORK"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "panic, fatal, error, warn, info, debug or trace",
				Value:   "info",
				EnvVars: []string{"BCHOTG_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump intermediate structures to stderr",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			getInfoCommand(),
			spendCommand(),
			decodeCommand(),
			{
				Name:  "version",
				Usage: "show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "bchotg %s\n", Version)
					return nil
				},
			},
		},
	}
}

func setupLogging(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return errors.Wrap(err, "log-level")
	}
	if c.Bool("debug") && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(c.App.ErrWriter)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

// network returns the parameters selected with --network.
func network(c *cli.Context) (*netparams.Params, error) {
	return netparams.ByName(c.String("network"))
}

// dump writes v to stderr when --debug is set.
func dump(c *cli.Context, label string, v interface{}) {
	if !c.Bool("debug") {
		return
	}
	w := errWriter(c)
	fmt.Fprintf(w, "--- %s ---\n", label)
	spew.Fdump(w, v)
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
