package main

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/bchotg/pkg/api"
	"github.com/suffix-labs/bchotg/pkg/inspect"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "summarize a raw transaction; with input amounts, check fee and signatures",
		ArgsUsage: "<rawhex> [amount BCH]...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "max-fee",
				Usage: "warn when the fee exceeds this many BCH",
				Value: units.FormatBCH(inspect.DefaultMaxPlausibleFee),
			},
		},
		Action: runDecode,
	}
}

func runDecode(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.Wrap(txerr.ErrInvalidFormat, "decode: raw transaction required")
	}
	net, err := network(c)
	if err != nil {
		return err
	}
	maxFee, err := units.ParseBCH(c.String("max-fee"))
	if err != nil {
		return errors.Wrap(err, "--max-fee")
	}

	args := c.Args().Slice()
	amounts := make([]uint64, 0, len(args)-1)
	for i, arg := range args[1:] {
		amount, err := units.ParseBCH(arg)
		if err != nil {
			return errors.Wrapf(err, "amount %d", i+1)
		}
		amounts = append(amounts, amount)
	}

	summary, err := api.Decode(args[0], amounts, inspect.Options{Net: net, MaxPlausibleFee: maxFee})
	if err != nil {
		return err
	}
	dump(c, "summary", summary)

	for _, warning := range summary.Warnings {
		logrus.Warn(warning)
	}
	return summary.WriteText(c.App.Writer)
}
