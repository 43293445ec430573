// Package units converts between satoshis and decimal BCH strings.
package units

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// maxDecimals is the number of fractional digits one satoshi needs.
const maxDecimals = 8

// ParseBCH parses a non-negative decimal BCH amount such as "0.001" into
// satoshis. At most eight fractional digits are accepted and the result
// must not exceed the total supply.
func ParseBCH(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if err := checkDecimal(s); err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: %v", s, err)
	}

	// Amounts below the supply limit with at most eight decimals are exact
	// after rounding to the nearest satoshi.
	amt, err := btcutil.NewAmount(f)
	if err != nil {
		return 0, errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: %v", s, err)
	}
	if amt < 0 || amt > btcutil.MaxSatoshi {
		return 0, errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: out of range", s)
	}
	return uint64(amt), nil
}

func checkDecimal(s string) error {
	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: empty", s)
	}
	if hasPoint && frac == "" {
		return errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: trailing decimal point", s)
	}
	if len(frac) > maxDecimals {
		return errors.Wrapf(txerr.ErrInvalidFormat,
			"amount %q: more than %d decimal places", s, maxDecimals)
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return errors.Wrapf(txerr.ErrInvalidFormat, "amount %q: unexpected %q", s, c)
			}
		}
	}
	return nil
}

// FormatBCH renders satoshis as a decimal BCH amount without trailing zeros.
func FormatBCH(sat uint64) string {
	whole := sat / btcutil.SatoshiPerBitcoin
	frac := sat % btcutil.SatoshiPerBitcoin
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}

	fs := strconv.FormatUint(frac, 10)
	fs = strings.Repeat("0", maxDecimals-len(fs)) + fs
	return strconv.FormatUint(whole, 10) + "." + strings.TrimRight(fs, "0")
}

// FormatSignedBCH renders a possibly negative satoshi amount.
func FormatSignedBCH(sat int64) string {
	if sat < 0 {
		return "-" + FormatBCH(uint64(-sat))
	}
	return FormatBCH(uint64(sat))
}
