package tx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Smallest possible encodings, used to bound counts before allocating.
const (
	minTxInSize  = 32 + 4 + 1 + 4
	minTxOutSize = 8 + 1
)

// Serialize returns the canonical encoding of t.
//
// Serialization never fails. Unsigned inputs are written with an empty
// scriptSig; such bytes are only useful for inspection, never for broadcast.
func (t *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	buf.Grow(t.SerializeSize())
	t.writeTo(&buf)
	return buf.Bytes()
}

// SerializeSize returns the length of the canonical encoding of t.
func (t *Transaction) SerializeSize() int {
	n := 4 + CompactSizeLen(uint64(len(t.Inputs))) + CompactSizeLen(uint64(len(t.Outputs))) + 4
	for i := range t.Inputs {
		n += 32 + 4 + CompactSizeLen(uint64(len(t.Inputs[i].ScriptSig))) + len(t.Inputs[i].ScriptSig) + 4
	}
	for i := range t.Outputs {
		n += 8 + CompactSizeLen(uint64(len(t.Outputs[i].ScriptPubKey))) + len(t.Outputs[i].ScriptPubKey)
	}
	return n
}

// SerializeTo writes the canonical encoding of t to w.
func (t *Transaction) SerializeTo(w io.Writer) error {
	_, err := w.Write(t.Serialize())
	return errors.WithStack(err)
}

// TxID returns the double-SHA256 of the serialized transaction. Its String
// method gives the reversed, display form.
func (t *Transaction) TxID() chainhash.Hash {
	return chainhash.DoubleHashH(t.Serialize())
}

func (t *Transaction) writeTo(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, t.Version)

	WriteCompactSize(buf, uint64(len(t.Inputs)))
	for i := range t.Inputs {
		t.Inputs[i].writeTo(buf)
	}

	WriteCompactSize(buf, uint64(len(t.Outputs)))
	for i := range t.Outputs {
		t.Outputs[i].writeTo(buf)
	}

	binary.Write(buf, binary.LittleEndian, t.LockTime)
}

// writeTo writes prevout_txid (32) | prevout_index (4) | scriptSig | sequence (4).
func (in *TxIn) writeTo(buf *bytes.Buffer) {
	buf.Write(in.UTXO.Hash[:])
	binary.Write(buf, binary.LittleEndian, in.UTXO.Index)
	WriteCompactSize(buf, uint64(len(in.ScriptSig)))
	buf.Write(in.ScriptSig)
	binary.Write(buf, binary.LittleEndian, in.Sequence)
}

// Serialize returns value (8) | varint(len) | scriptPubKey. This is also the
// per-output encoding committed to by hashOutputs.
func (out *TxOut) Serialize() []byte {
	var buf bytes.Buffer
	out.writeTo(&buf)
	return buf.Bytes()
}

func (out *TxOut) writeTo(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, out.Amount)
	WriteCompactSize(buf, uint64(len(out.ScriptPubKey)))
	buf.Write(out.ScriptPubKey)
}

// Parse decodes a serialized transaction.
//
// Fails with txerr.ErrTruncatedData if any field or declared length runs past
// the end of data, txerr.ErrTrailingData if bytes remain after the lock time,
// txerr.ErrInvalidFormat for non-canonical varints and txerr.ErrUnknownVersion
// for transaction versions other than 1 and 2.
func Parse(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	t := &Transaction{}

	if err := readUint32(r, &t.Version, "version"); err != nil {
		return nil, err
	}
	if t.Version != 1 && t.Version != 2 {
		return nil, errors.Wrapf(txerr.ErrUnknownVersion, "transaction version %d", t.Version)
	}

	numInputs, err := ReadCompactSize(r, "input count")
	if err != nil {
		return nil, err
	}
	if numInputs > uint64(r.Len()/minTxInSize) {
		return nil, errors.Wrapf(txerr.ErrTruncatedData,
			"input count %d with %d bytes remaining", numInputs, r.Len())
	}
	t.Inputs = make([]TxIn, numInputs)
	for i := range t.Inputs {
		if err := parseTxIn(r, &t.Inputs[i]); err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
	}

	numOutputs, err := ReadCompactSize(r, "output count")
	if err != nil {
		return nil, err
	}
	if numOutputs > uint64(r.Len()/minTxOutSize) {
		return nil, errors.Wrapf(txerr.ErrTruncatedData,
			"output count %d with %d bytes remaining", numOutputs, r.Len())
	}
	t.Outputs = make([]TxOut, numOutputs)
	for i := range t.Outputs {
		if err := parseTxOut(r, &t.Outputs[i]); err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
	}

	if err := readUint32(r, &t.LockTime, "lock_time"); err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, errors.Wrapf(txerr.ErrTrailingData, "%d bytes after lock_time", r.Len())
	}

	return t, nil
}

// parseTxIn reads a single input.
func parseTxIn(r *bytes.Reader, in *TxIn) error {
	if err := readFull(r, in.UTXO.Hash[:], "prevout txid"); err != nil {
		return err
	}
	if err := readUint32(r, &in.UTXO.Index, "prevout index"); err != nil {
		return err
	}

	script, err := readVarBytes(r, "scriptSig")
	if err != nil {
		return err
	}
	in.ScriptSig = script

	return readUint32(r, &in.Sequence, "sequence")
}

// parseTxOut reads a single output.
func parseTxOut(r *bytes.Reader, out *TxOut) error {
	if r.Len() < 8 {
		return errors.Wrapf(txerr.ErrTruncatedData, "value: need 8 bytes, have %d", r.Len())
	}
	binary.Read(r, binary.LittleEndian, &out.Amount)

	script, err := readVarBytes(r, "scriptPubKey")
	if err != nil {
		return err
	}
	out.ScriptPubKey = script
	return nil
}

func readUint32(r *bytes.Reader, v *uint32, field string) error {
	if r.Len() < 4 {
		return errors.Wrapf(txerr.ErrTruncatedData, "%s: need 4 bytes, have %d", field, r.Len())
	}
	return binary.Read(r, binary.LittleEndian, v)
}

func readFull(r *bytes.Reader, b []byte, field string) error {
	if r.Len() < len(b) {
		return errors.Wrapf(txerr.ErrTruncatedData, "%s: need %d bytes, have %d", field, len(b), r.Len())
	}
	_, err := io.ReadFull(r, b)
	return err
}

// readVarBytes reads a compact-size length followed by that many bytes. The
// length is checked against the remaining data before allocating.
func readVarBytes(r *bytes.Reader, field string) ([]byte, error) {
	n, err := ReadCompactSize(r, field+" length")
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, errors.Wrapf(txerr.ErrTruncatedData,
			"%s: declared %d bytes, have %d", field, n, r.Len())
	}
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// parseDisplayHash parses a 64-character hex transaction id in display order.
func parseDisplayHash(s string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, errors.Wrapf(txerr.ErrInvalidFormat,
			"txid %q: want %d hex characters, got %d", s, chainhash.MaxHashStringSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(txerr.ErrInvalidFormat, "txid %q: %v", s, err)
	}
	return *h, nil
}
