// Package api provides the high-level public API of the engine.
//
// This is the main entry point for applications using the bchotg library.
// It implements the three operations of the command line tool:
//
//  1. GetInfo - Public key and addresses of a private key
//  2. Spend - Builds and signs a transaction sweeping UTXOs to one address
//  3. Decode - Summarizes a raw transaction
//
// Nothing here touches the network or the filesystem. Callers read key
// files and publish the resulting transaction themselves.
package api

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/suffix-labs/bchotg/pkg/address"
	"github.com/suffix-labs/bchotg/pkg/bip21"
	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/inspect"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/roles"
	"github.com/suffix-labs/bchotg/pkg/tx"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

// KeyInfo describes a private key without revealing it.
type KeyInfo struct {
	PubKey     string // Hex
	Compressed bool
	Net        *netparams.Params
	Addresses  address.Pair
}

// Input is one UTXO to spend.
type Input struct {
	TxID   string // Display order hex
	Vout   uint32
	Amount uint64 // Satoshis
	Key    int    // Index into SpendRequest.Keys
}

// SpendRequest describes a sweep of Inputs to Destination.
type SpendRequest struct {
	Net         *netparams.Params // Nil means MainNet
	Keys        []string          // WIF private keys
	Inputs      []Input
	Destination string // Address or payment URI
	Fee         uint64 // Satoshis
}

// SpendResult is a signed transaction ready for broadcast.
type SpendResult struct {
	Raw         []byte
	TxID        string
	InputTotal  uint64
	Amount      uint64 // Paid to Destination
	Fee         uint64
	Destination address.Address
	Warnings    []string
}

// Hex returns the raw transaction as hex.
func (r *SpendResult) Hex() string {
	return hex.EncodeToString(r.Raw)
}

// ============================================================================
// API Function 1: GetInfo
// ============================================================================

// GetInfo decodes a WIF private key and returns its public key and both
// address encodings on the key's network.
func GetInfo(wif string) (*KeyInfo, error) {
	key, err := crypto.DecodeWIF(strings.TrimSpace(wif))
	if err != nil {
		return nil, err
	}
	pub := key.PublicKey()

	info := &KeyInfo{
		PubKey:     hex.EncodeToString(pub.Bytes()),
		Compressed: key.Compressed(),
		Net:        key.Network(),
		Addresses:  address.FromPublicKey(pub, key.Network()),
	}
	logrus.WithFields(logrus.Fields{
		"network":    info.Net,
		"compressed": info.Compressed,
		"cashaddr":   info.Addresses.CashAddr,
	}).Debug("decoded private key")
	return info, nil
}

// ============================================================================
// API Function 2: Spend
// ============================================================================

// Spend builds, signs and serializes a transaction paying everything in
// req.Inputs minus req.Fee to req.Destination.
//
// The workflow runs the roles in order:
//  1. Creator - Empty proposal for the network
//  2. Constructor - Inputs and the sweep output
//  3. Signer - One FORKID signature per input
//  4. Spend Finalizer - scriptSigs
//  5. Transaction Extractor - Raw bytes and txid
//
// The result is then decoded again and every signature verified before it
// is returned.
func Spend(req *SpendRequest) (*SpendResult, error) {
	net := req.Net
	if net == nil {
		net = netparams.MainNet
	}

	keys, err := decodeKeys(req.Keys)
	if err != nil {
		return nil, err
	}
	if len(req.Inputs) == 0 {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "spend: no inputs")
	}

	payment, err := bip21.Parse(req.Destination, net)
	if err != nil {
		return nil, errors.Wrap(err, "destination")
	}

	// Creator
	p := roles.NewCreator(net).Create()

	// Constructor
	constructor := roles.NewConstructor(p)
	signers := make([]*crypto.PrivateKey, len(req.Inputs))
	for i, in := range req.Inputs {
		if in.Key < 0 || in.Key >= len(keys) {
			return nil, errors.Wrapf(txerr.ErrInvalidFormat,
				"input %d: key %d of %d", i, in.Key+1, len(keys))
		}
		signers[i] = keys[in.Key]

		op, err := tx.NewOutPoint(in.TxID, in.Vout)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		if err := constructor.AddInput(tx.UTXO{OutPoint: op, Amount: in.Amount}); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"input":  i,
			"txid":   in.TxID,
			"vout":   in.Vout,
			"amount": units.FormatBCH(in.Amount),
		}).Debug("added input")
	}

	amount, err := constructor.AddSweepOutput(payment.Address, req.Fee)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"destination": payment.Address,
		"amount":      units.FormatBCH(amount),
		"fee":         units.FormatBCH(req.Fee),
	}).Debug("added sweep output")

	// Signer
	signer := roles.NewSigner(constructor.Finish())
	if err := signer.SignAll(signers); err != nil {
		return nil, err
	}

	// Spend Finalizer
	finalizer := roles.NewSpendFinalizer(signer.Finish())
	if err := finalizer.Finalize(); err != nil {
		return nil, err
	}

	// Transaction Extractor
	p = finalizer.Finish()
	inputTotal := p.Tx.InputTotal()
	raw, txid, err := roles.NewTxExtractor(p).Extract()
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"txid": txid,
		"size": len(raw),
		"fee":  units.FormatSignedBCH(p.Fee()),
	}).Debug("extracted transaction")

	result := &SpendResult{
		Raw:         raw,
		TxID:        txid.String(),
		InputTotal:  inputTotal,
		Amount:      amount,
		Fee:         req.Fee,
		Destination: payment.Address,
	}
	if payment.Amount != nil && *payment.Amount != amount {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"payment request asks for %s BCH, sending %s BCH",
			units.FormatBCH(*payment.Amount), units.FormatBCH(amount)))
	}

	summary, err := selfCheck(raw, req.Inputs, net)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, summary.Warnings...)

	return result, nil
}

func decodeKeys(wifs []string) ([]*crypto.PrivateKey, error) {
	if len(wifs) == 0 {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "spend: no keys")
	}
	keys := make([]*crypto.PrivateKey, len(wifs))
	for i, wif := range wifs {
		key, err := crypto.DecodeWIF(strings.TrimSpace(wif))
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", i+1)
		}
		keys[i] = key
	}
	return keys, nil
}

// selfCheck decodes the signed transaction and fails if any signature does
// not verify against the amounts it was built from.
func selfCheck(raw []byte, inputs []Input, net *netparams.Params) (*inspect.Summary, error) {
	amounts := make([]uint64, len(inputs))
	for i, in := range inputs {
		amounts[i] = in.Amount
	}

	summary, err := inspect.Decode(raw, amounts, inspect.Options{Net: net})
	if err != nil {
		return nil, errors.Wrap(err, "self-check")
	}
	for _, in := range summary.Inputs {
		if in.Verification != inspect.Valid {
			return nil, errors.AssertionFailedf("self-check: input %d signature %s: %s",
				in.Index, in.Verification, in.Detail)
		}
	}
	return summary, nil
}

// ============================================================================
// API Function 3: Decode
// ============================================================================

// Decode parses a hex encoded transaction and summarizes it. amounts holds
// the value of each spent output in input order and may be empty.
func Decode(rawHex string, amounts []uint64, opts inspect.Options) (*inspect.Summary, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(rawHex))
	if err != nil {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "raw transaction: %v", err)
	}

	summary, err := inspect.Decode(raw, amounts, opts)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"txid":     summary.TxID,
		"inputs":   len(summary.Inputs),
		"outputs":  len(summary.Outputs),
		"warnings": len(summary.Warnings),
	}).Debug("decoded transaction")
	return summary, nil
}
