// Package tx implements the Bitcoin Cash transaction model and its canonical
// byte encoding.
//
// The encoding is the pre-segwit Bitcoin layout used unchanged by Bitcoin Cash:
//
//	version (4) | varint(#inputs) | inputs | varint(#outputs) | outputs | lock_time (4)
//
// All integers are little-endian. Transaction ids are kept in internal byte
// order (chainhash.Hash) and are displayed reversed, exactly as block
// explorers show them.
//
// References:
//   - https://en.bitcoin.it/wiki/Protocol_documentation#tx
//   - https://reference.cash/protocol/blockchain/transaction
package tx

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Transaction constants.
const (
	// Version is the version of every transaction this engine creates.
	Version uint32 = 2

	// LockTime is the lock time of every transaction this engine creates.
	LockTime uint32 = 0

	// DefaultSequence disables relative time locks and lock time.
	DefaultSequence uint32 = 0xFFFFFFFF

	// SatoshiPerBitcoin is the number of base units in one coin.
	SatoshiPerBitcoin = 100_000_000

	// MaxSatoshi is the maximum amount that can exist.
	MaxSatoshi = 21_000_000 * SatoshiPerBitcoin
)

// OutPoint identifies a previous transaction output.
type OutPoint struct {
	Hash  chainhash.Hash // Transaction id in internal (reversed display) byte order
	Index uint32         // Output index in that transaction
}

// NewOutPoint parses a transaction id in display form (as shown by explorers)
// and pairs it with an output index.
func NewOutPoint(txid string, index uint32) (OutPoint, error) {
	h, err := parseDisplayHash(txid)
	if err != nil {
		return OutPoint{}, err
	}
	return OutPoint{Hash: h, Index: index}, nil
}

// UTXO is a user-supplied reference to an unspent output. The engine never
// verifies that it exists or is unspent.
type UTXO struct {
	OutPoint
	Amount uint64 // Value in satoshis
}

// TxIn is a transaction input.
//
// The Amount of the referenced UTXO is not part of the encoding; it is carried
// here because the signature hash commits to it. Parsed transactions leave it
// zero.
type TxIn struct {
	UTXO      UTXO
	ScriptSig []byte // Empty until signed
	Sequence  uint32
}

// TxOut is a transaction output.
type TxOut struct {
	Amount       uint64 // Value in satoshis
	ScriptPubKey []byte // Locking script
}

// Transaction is an ordered set of inputs and outputs. Input order is
// significant: it is committed into every signature hash.
type Transaction struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	LockTime uint32
}

// New returns an empty transaction with the fixed version and lock time.
func New() *Transaction {
	return &Transaction{
		Version:  Version,
		Inputs:   []TxIn{},
		Outputs:  []TxOut{},
		LockTime: LockTime,
	}
}

// NewTxIn returns an unsigned input spending utxo.
func NewTxIn(utxo UTXO) TxIn {
	return TxIn{
		UTXO:      utxo,
		ScriptSig: nil,
		Sequence:  DefaultSequence,
	}
}

// InputTotal returns the sum of the referenced UTXO amounts.
func (t *Transaction) InputTotal() uint64 {
	var total uint64
	for _, in := range t.Inputs {
		total += in.UTXO.Amount
	}
	return total
}

// OutputTotal returns the sum of the output amounts.
func (t *Transaction) OutputTotal() uint64 {
	var total uint64
	for _, out := range t.Outputs {
		total += out.Amount
	}
	return total
}

// IsSigned reports whether every input carries a scriptSig.
func (t *Transaction) IsSigned() bool {
	for _, in := range t.Inputs {
		if len(in.ScriptSig) == 0 {
			return false
		}
	}
	return len(t.Inputs) > 0
}
