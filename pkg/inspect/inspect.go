// Package inspect decodes raw transactions into a human-checkable summary.
//
// Decoding is advisory: a suspicious fee produces a warning, never an error,
// and signature verification results are reported per input without
// failing the decode. Only malformed bytes and inconsistent input amounts
// are errors.
package inspect

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/address"
	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/script"
	"github.com/suffix-labs/bchotg/pkg/tx"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

// DefaultMaxPlausibleFee is 0.01 BCH.
const DefaultMaxPlausibleFee uint64 = 1_000_000

// Options control decoding.
type Options struct {
	// Net selects the address encodings of outputs. Nil means MainNet.
	Net *netparams.Params

	// MaxPlausibleFee is the fee above which a warning is raised. Zero
	// means DefaultMaxPlausibleFee.
	MaxPlausibleFee uint64
}

// Verification is the outcome of checking one input's signature.
type Verification int

const (
	Unchecked Verification = iota
	Valid
	Invalid
)

func (v Verification) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unchecked"
	}
}

// Input describes one decoded input.
type Input struct {
	Index    int
	OutPoint tx.OutPoint
	Sequence uint32
	Amount   *uint64 // Nil when amounts were not supplied

	ScriptSig string // Disassembly
	PubKey    []byte // Nil unless the scriptSig is a P2PKH spend
	HashType  byte
	Signer    *address.Pair

	Verification Verification
	Detail       string // Why the input is unchecked or invalid
}

// Output describes one decoded output.
type Output struct {
	Index        int
	Amount       uint64
	ScriptPubKey string        // Disassembly
	Addresses    *address.Pair // Nil for non-standard scripts
}

// Standard reports whether the output is P2PKH.
func (o *Output) Standard() bool {
	return o.Addresses != nil
}

// Summary is the decoded form of a transaction.
type Summary struct {
	TxID     chainhash.Hash
	Size     int
	Version  uint32
	LockTime uint32
	Inputs   []Input
	Outputs  []Output

	OutputTotal *uint64 // Nil when the outputs exceed the maximum supply
	InputTotal  *uint64 // Nil when amounts were not supplied
	Fee         *int64  // Nil without amounts or a valid output total

	Warnings []string
}

// Decode parses raw and summarizes it. amounts holds the value of each
// spent output in input order; an empty slice means the amounts are
// unknown, which disables the fee computation and FORKID signature
// verification.
func Decode(raw []byte, amounts []uint64, opts Options) (*Summary, error) {
	if opts.Net == nil {
		opts.Net = netparams.MainNet
	}
	if opts.MaxPlausibleFee == 0 {
		opts.MaxPlausibleFee = DefaultMaxPlausibleFee
	}

	t, err := tx.Parse(raw)
	if err != nil {
		return nil, err
	}

	known := len(amounts) > 0
	if known && len(amounts) != len(t.Inputs) {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat,
			"amounts: %d given for %d inputs", len(amounts), len(t.Inputs))
	}
	var inputTotal uint64
	for i, amount := range amounts {
		if amount > tx.MaxSatoshi || inputTotal+amount > tx.MaxSatoshi {
			return nil, errors.Wrapf(txerr.ErrInvalidFormat, "amounts[%d]: %d out of range", i, amount)
		}
		inputTotal += amount
		t.Inputs[i].UTXO.Amount = amount
	}

	s := &Summary{
		TxID:     t.TxID(),
		Size:     len(raw),
		Version:  t.Version,
		LockTime: t.LockTime,
	}
	if total, warnings := outputTotal(t.Outputs); warnings == nil {
		s.OutputTotal = &total
	} else {
		s.Warnings = warnings
	}

	for i, out := range t.Outputs {
		o := Output{
			Index:        i,
			Amount:       out.Amount,
			ScriptPubKey: script.Disassemble(out.ScriptPubKey),
		}
		if hash, ok := script.ExtractPubKeyHash(out.ScriptPubKey); ok {
			pair := address.FromHash(hash, opts.Net)
			o.Addresses = &pair
		}
		s.Outputs = append(s.Outputs, o)
	}

	v := &verifier{tx: t, known: known, net: opts.Net}
	if known {
		v.digests = crypto.ComputeSighashDigests(t)
	}
	for i, in := range t.Inputs {
		input := Input{
			Index:     i,
			OutPoint:  in.UTXO.OutPoint,
			Sequence:  in.Sequence,
			ScriptSig: script.Disassemble(in.ScriptSig),
		}
		if known {
			amount := amounts[i]
			input.Amount = &amount
		}
		v.verify(&input, in.ScriptSig)
		s.Inputs = append(s.Inputs, input)
	}

	if known {
		s.InputTotal = &inputTotal
	}
	if known && s.OutputTotal != nil {
		fee := int64(inputTotal) - int64(*s.OutputTotal)
		s.Fee = &fee
		s.Warnings = feeWarnings(fee, inputTotal, opts.MaxPlausibleFee)
	}

	return s, nil
}

// outputTotal sums the output amounts. The parser does not range check
// amounts, so an output or running total above tx.MaxSatoshi yields
// warnings instead of a total.
func outputTotal(outputs []tx.TxOut) (uint64, []string) {
	var total uint64
	var warnings []string
	overflow := false
	for i, out := range outputs {
		if out.Amount > tx.MaxSatoshi {
			warnings = append(warnings, fmt.Sprintf("output %d exceeds the maximum supply", i))
			continue
		}
		if !overflow {
			total += out.Amount
			overflow = total > tx.MaxSatoshi
		}
	}
	if overflow {
		warnings = append(warnings, "output total exceeds the maximum supply")
	}
	return total, warnings
}

func feeWarnings(fee int64, inputTotal, maxFee uint64) []string {
	var warnings []string
	if fee < 0 {
		return append(warnings, fmt.Sprintf("outputs exceed inputs by %s BCH", units.FormatBCH(uint64(-fee))))
	}
	if uint64(fee) > maxFee {
		warnings = append(warnings, fmt.Sprintf("fee of %s BCH is above %s BCH",
			units.FormatBCH(uint64(fee)), units.FormatBCH(maxFee)))
	}
	if uint64(fee)*10 > inputTotal {
		warnings = append(warnings, fmt.Sprintf("fee of %s BCH is more than 10%% of the inputs",
			units.FormatBCH(uint64(fee))))
	}
	return warnings
}

type verifier struct {
	tx      *tx.Transaction
	digests *crypto.SighashDigests
	known   bool
	net     *netparams.Params
}

// verify fills in the signer and verification fields of input. The
// scriptCode is rebuilt from the public key in the scriptSig, so a valid
// result means the signature matches that key, not that the key owns the
// spent output.
func (v *verifier) verify(input *Input, scriptSig []byte) {
	spend, err := script.ParseP2PKHSpend(scriptSig)
	if err != nil {
		input.Detail = "not a P2PKH spend"
		return
	}
	input.PubKey = spend.PubKey
	input.HashType = spend.HashType

	pub, err := crypto.ParsePublicKey(spend.PubKey)
	if err != nil {
		input.Verification = Invalid
		input.Detail = "malformed public key"
		return
	}
	pair := address.FromPublicKey(pub, v.net)
	input.Signer = &pair

	scriptCode := script.P2PKHLockingScript(pub.Hash())
	var sighash [32]byte
	switch hashType := crypto.SigHashType(spend.HashType); {
	case hashType == crypto.SigHashAll:
		sighash, err = crypto.LegacySignatureHash(v.tx, input.Index, scriptCode)
	case !hashType.HasForkID():
		input.Detail = fmt.Sprintf("legacy hash type 0x%02x not supported", spend.HashType)
		return
	case !v.known:
		input.Detail = "amount unknown"
		return
	default:
		// SignatureHash rejects FORKID variants other than ALL.
		sighash, err = v.digests.SignatureHash(v.tx, input.Index, scriptCode,
			v.tx.Inputs[input.Index].UTXO.Amount, hashType)
	}
	if err != nil {
		input.Detail = err.Error()
		return
	}

	if crypto.VerifySignature(pub, sighash, spend.Signature) {
		input.Verification = Valid
		return
	}
	input.Verification = Invalid
	input.Detail = "signature does not match"
}
