package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160"
)

// PubKeyHashSize is the length of a HASH160 digest.
const PubKeyHashSize = 20

// PubKeyHash is RIPEMD160(SHA256(public key)), the payload of P2PKH scripts
// and addresses.
type PubKeyHash [PubKeyHashSize]byte

// Hash160 computes RIPEMD160(SHA256(b)).
func Hash160(b []byte) PubKeyHash {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])

	var out PubKeyHash
	copy(out[:], h.Sum(nil))
	return out
}

// String returns the hash in hex.
func (h PubKeyHash) String() string {
	return hex.EncodeToString(h[:])
}

// DoubleSHA256 computes SHA256(SHA256(b)).
func DoubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
