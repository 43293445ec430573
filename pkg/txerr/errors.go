// Package txerr defines the error kinds shared by the transaction engine.
//
// Every failure surfaced by the core packages wraps exactly one of the
// sentinel kinds below, together with the name of the offending field:
//
//	errors.Wrapf(txerr.ErrTruncatedData, "input %d: scriptSig", i)
//
// Callers classify failures with the standard library's errors.Is or with
// Kind. No kind is ever retried or replaced by a default value.
package txerr

import (
	stderrors "errors"

	"github.com/cockroachdb/errors"
)

// Error kinds.
var (
	// ErrInvalidFormat is returned for malformed encoded strings or structures.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidChecksum is returned when a key or address checksum does not match.
	ErrInvalidChecksum = errors.New("invalid checksum")

	// ErrInvalidAddressChecksum is returned when a cashaddr polymod does not verify.
	// It is also reported as ErrInvalidChecksum.
	ErrInvalidAddressChecksum error = addressChecksumError{}

	// ErrUnknownVersion is returned for unrecognized network or version bytes.
	ErrUnknownVersion = errors.New("unknown version")

	// ErrTruncatedData is returned when a declared length exceeds the remaining bytes.
	ErrTruncatedData = errors.New("truncated data")

	// ErrTrailingData is returned when bytes remain after the transaction locktime.
	ErrTrailingData = errors.New("trailing data")

	// ErrUnsupportedScript is returned for any script pattern other than P2PKH
	// where signing or spending requires one.
	ErrUnsupportedScript = errors.New("unsupported script")

	// ErrUnsupportedSighash is returned for signature hash types the engine
	// does not compute.
	ErrUnsupportedSighash = errors.New("unsupported sighash type")

	// ErrInsufficientFunds is returned when the requested fee exceeds the
	// total of the referenced inputs.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadySigned is returned when an input's scriptSig would be set twice.
	ErrAlreadySigned = errors.New("input already signed")
)

type addressChecksumError struct{}

func (addressChecksumError) Error() string { return "invalid address checksum" }

func (addressChecksumError) Is(target error) bool { return target == ErrInvalidChecksum }

var kinds = []struct {
	err  error
	name string
}{
	// More specific kinds first: an address checksum error is also a checksum error.
	{ErrInvalidAddressChecksum, "InvalidAddressChecksum"},
	{ErrInvalidChecksum, "InvalidChecksum"},
	{ErrInvalidFormat, "InvalidFormat"},
	{ErrUnknownVersion, "UnknownVersion"},
	{ErrTruncatedData, "TruncatedData"},
	{ErrTrailingData, "TrailingData"},
	{ErrUnsupportedScript, "UnsupportedScript"},
	{ErrUnsupportedSighash, "UnsupportedSighash"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrAlreadySigned, "AlreadySigned"},
}

// Kind returns the name of the error kind wrapped by err, or "" if err does
// not carry one of the kinds defined in this package.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
