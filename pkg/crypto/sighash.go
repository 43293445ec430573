package crypto

// Signature hashing for Bitcoin Cash inputs.
//
// Since the 2017 fork every Bitcoin Cash signature commits to the BIP 143
// shaped digest with the FORKID bit set in the hash type. The pre-fork
// algorithm is kept for verifying old signatures only.
//
// References:
//   - https://github.com/bitcoin/bips/blob/master/bip-0143.mediawiki
//   - https://reference.cash/protocol/blockchain/transaction-signing

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/tx"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// SigHashType selects which parts of a transaction a signature commits to.
// It is appended as one byte to every signature and as four little-endian
// bytes to every preimage.
type SigHashType uint32

// Signature hash types.
const (
	SigHashAll          SigHashType = 0x01
	SigHashNone         SigHashType = 0x02
	SigHashSingle       SigHashType = 0x03
	SigHashForkID       SigHashType = 0x40
	SigHashAnyoneCanPay SigHashType = 0x80

	// SigHashAllForkID is the only type this engine signs with.
	SigHashAllForkID = SigHashAll | SigHashForkID
)

// HasForkID reports whether the FORKID bit is set.
func (t SigHashType) HasForkID() bool {
	return t&SigHashForkID != 0
}

// SighashDigests holds the transaction-wide digests shared by every input's
// preimage. They depend only on the transaction, never on the input being
// signed.
type SighashDigests struct {
	HashPrevouts [32]byte
	HashSequence [32]byte
	HashOutputs  [32]byte
}

// ComputeSighashDigests computes the shared digests for t. Compute them once
// per transaction and reuse them for every input.
func ComputeSighashDigests(t *tx.Transaction) *SighashDigests {
	return &SighashDigests{
		HashPrevouts: computePrevoutsDigest(t.Inputs),
		HashSequence: computeSequenceDigest(t.Inputs),
		HashOutputs:  computeOutputsDigest(t.Outputs),
	}
}

// hashPrevouts = SHA256d(txid || index, for every input)
func computePrevoutsDigest(inputs []tx.TxIn) [32]byte {
	var buf bytes.Buffer
	for _, in := range inputs {
		buf.Write(in.UTXO.Hash[:])
		binary.Write(&buf, binary.LittleEndian, in.UTXO.Index)
	}
	return DoubleSHA256(buf.Bytes())
}

// hashSequence = SHA256d(sequence, for every input)
func computeSequenceDigest(inputs []tx.TxIn) [32]byte {
	var buf bytes.Buffer
	for _, in := range inputs {
		binary.Write(&buf, binary.LittleEndian, in.Sequence)
	}
	return DoubleSHA256(buf.Bytes())
}

// hashOutputs = SHA256d(serialized output, for every output)
func computeOutputsDigest(outputs []tx.TxOut) [32]byte {
	var buf bytes.Buffer
	for i := range outputs {
		buf.Write(outputs[i].Serialize())
	}
	return DoubleSHA256(buf.Bytes())
}

// Preimage builds the byte string hashed for input inputIndex:
//
//	version (4) || hashPrevouts (32) || hashSequence (32) ||
//	prevout txid (32) || prevout index (4) ||
//	varint(len(scriptCode)) || scriptCode ||
//	amount (8) || sequence (4) || hashOutputs (32) ||
//	lock_time (4) || hash type (4)
//
// amount is the value of the output being spent. It is not part of the
// transaction encoding, so a wrong value produces a signature the network
// rejects.
func (d *SighashDigests) Preimage(
	t *tx.Transaction,
	inputIndex int,
	scriptCode []byte,
	amount uint64,
	hashType SigHashType,
) ([]byte, error) {
	if hashType != SigHashAllForkID {
		return nil, errors.Wrapf(txerr.ErrUnsupportedSighash, "hash type 0x%02x", uint32(hashType))
	}
	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat,
			"input index %d out of range [0, %d)", inputIndex, len(t.Inputs))
	}
	in := &t.Inputs[inputIndex]

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t.Version)
	buf.Write(d.HashPrevouts[:])
	buf.Write(d.HashSequence[:])

	buf.Write(in.UTXO.Hash[:])
	binary.Write(&buf, binary.LittleEndian, in.UTXO.Index)
	tx.WriteCompactSize(&buf, uint64(len(scriptCode)))
	buf.Write(scriptCode)
	binary.Write(&buf, binary.LittleEndian, amount)
	binary.Write(&buf, binary.LittleEndian, in.Sequence)

	buf.Write(d.HashOutputs[:])
	binary.Write(&buf, binary.LittleEndian, t.LockTime)
	binary.Write(&buf, binary.LittleEndian, uint32(hashType))

	return buf.Bytes(), nil
}

// SignatureHash returns SHA256d of the preimage for input inputIndex.
func (d *SighashDigests) SignatureHash(
	t *tx.Transaction,
	inputIndex int,
	scriptCode []byte,
	amount uint64,
	hashType SigHashType,
) ([32]byte, error) {
	preimage, err := d.Preimage(t, inputIndex, scriptCode, amount, hashType)
	if err != nil {
		return [32]byte{}, err
	}
	return DoubleSHA256(preimage), nil
}

// LegacySignatureHash computes the pre-fork SIGHASH_ALL digest for input
// inputIndex: the transaction is serialized with every scriptSig emptied
// except the signed input's, which is replaced by scriptCode, followed by
// the four-byte hash type.
func LegacySignatureHash(t *tx.Transaction, inputIndex int, scriptCode []byte) ([32]byte, error) {
	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return [32]byte{}, errors.Wrapf(txerr.ErrInvalidFormat,
			"input index %d out of range [0, %d)", inputIndex, len(t.Inputs))
	}

	stripped := tx.Transaction{
		Version:  t.Version,
		Inputs:   make([]tx.TxIn, len(t.Inputs)),
		Outputs:  t.Outputs,
		LockTime: t.LockTime,
	}
	for i, in := range t.Inputs {
		in.ScriptSig = nil
		if i == inputIndex {
			in.ScriptSig = scriptCode
		}
		stripped.Inputs[i] = in
	}

	var buf bytes.Buffer
	if err := stripped.SerializeTo(&buf); err != nil {
		return [32]byte{}, err
	}
	binary.Write(&buf, binary.LittleEndian, uint32(SigHashAll))

	return DoubleSHA256(buf.Bytes()), nil
}
