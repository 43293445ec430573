// Package script builds and recognizes the P2PKH scripts used by the
// transaction engine.
//
// Locking script (scriptPubKey), 25 bytes:
//
//	OP_DUP OP_HASH160 <20-byte pubkey hash> OP_EQUALVERIFY OP_CHECKSIG
//
// Spending script (scriptSig):
//
//	<DER signature || hash type> <public key>
//
// See: bitcoin/script/script.h and bitcoin/script/interpreter.cpp
package script

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Opcodes used by the engine.
const (
	OP_0             = 0x00
	OP_PUSHDATA1     = 0x4c
	OP_PUSHDATA2     = 0x4d
	OP_PUSHDATA4     = 0x4e
	OP_1NEGATE       = 0x4f
	OP_1             = 0x51
	OP_16            = 0x60
	OP_RETURN        = 0x6a
	OP_DUP           = 0x76
	OP_EQUAL         = 0x87
	OP_EQUALVERIFY   = 0x88
	OP_HASH160       = 0xa9
	OP_CHECKSIG      = 0xac
	OP_CHECKMULTISIG = 0xae
)

// P2PKHScriptSize is the length of a P2PKH locking script.
const P2PKHScriptSize = 25

// P2PKHLockingScript returns the scriptPubKey paying to hash.
func P2PKHLockingScript(hash crypto.PubKeyHash) []byte {
	script := make([]byte, 0, P2PKHScriptSize)
	script = append(script, OP_DUP, OP_HASH160, crypto.PubKeyHashSize)
	script = append(script, hash[:]...)
	return append(script, OP_EQUALVERIFY, OP_CHECKSIG)
}

// P2PKHSpendingScript returns the scriptSig redeeming a P2PKH output:
// a push of the DER signature followed by the hash type byte, then a push
// of the serialized public key.
func P2PKHSpendingScript(signature []byte, hashType byte, pubKey []byte) []byte {
	sig := make([]byte, 0, len(signature)+1)
	sig = append(sig, signature...)
	sig = append(sig, hashType)

	var buf bytes.Buffer
	writePush(&buf, sig)
	writePush(&buf, pubKey)
	return buf.Bytes()
}

// writePush writes data with the smallest push opcode that can carry it.
func writePush(buf *bytes.Buffer, data []byte) {
	n := len(data)
	switch {
	case n < OP_PUSHDATA1:
		buf.WriteByte(byte(n))
	case n <= 0xff:
		buf.WriteByte(OP_PUSHDATA1)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(OP_PUSHDATA2)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	default:
		buf.WriteByte(OP_PUSHDATA4)
		binary.Write(buf, binary.LittleEndian, uint32(n))
	}
	buf.Write(data)
}

// IsP2PKH reports whether script is exactly a P2PKH locking script.
func IsP2PKH(script []byte) bool {
	return len(script) == P2PKHScriptSize &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == crypto.PubKeyHashSize &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG
}

// ExtractPubKeyHash returns the hash a P2PKH locking script pays to. ok is
// false for any other script.
func ExtractPubKeyHash(script []byte) (hash crypto.PubKeyHash, ok bool) {
	if !IsP2PKH(script) {
		return hash, false
	}
	copy(hash[:], script[3:23])
	return hash, true
}

// P2PKHSpend is the content of a P2PKH scriptSig.
type P2PKHSpend struct {
	Signature []byte // DER signature without the hash type byte
	HashType  byte
	PubKey    []byte
}

// ParseP2PKHSpend splits a scriptSig of the form <sig||hashtype> <pubkey>.
// Any other shape fails with txerr.ErrUnsupportedScript; a malformed push
// fails with txerr.ErrInvalidFormat.
func ParseP2PKHSpend(scriptSig []byte) (*P2PKHSpend, error) {
	elems, err := Parse(scriptSig)
	if err != nil {
		return nil, err
	}
	if len(elems) != 2 || !elems[0].IsPush() || !elems[1].IsPush() {
		return nil, errors.Wrapf(txerr.ErrUnsupportedScript,
			"scriptSig: want <signature> <pubkey>, got %d elements", len(elems))
	}

	sig, pub := elems[0].Data, elems[1].Data
	if len(sig) < 2 {
		return nil, errors.Wrapf(txerr.ErrUnsupportedScript, "scriptSig: signature push of %d bytes", len(sig))
	}
	if len(pub) != 33 && len(pub) != 65 {
		return nil, errors.Wrapf(txerr.ErrUnsupportedScript, "scriptSig: public key push of %d bytes", len(pub))
	}

	return &P2PKHSpend{
		Signature: sig[:len(sig)-1],
		HashType:  sig[len(sig)-1],
		PubKey:    pub,
	}, nil
}
