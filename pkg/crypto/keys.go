// Package crypto implements key material and signature hashing for Bitcoin
// Cash P2PKH inputs.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format), base-58 check encoded
//     version byte || scalar (32 bytes) || [0x01 compression marker]
//   - Public keys: 33-byte compressed or 65-byte uncompressed SEC encoding,
//     selected by the WIF compression marker
//   - Signatures: DER-encoded, RFC 6979 deterministic nonces, low-S
//
// Curve arithmetic and ECDSA are delegated to decred's secp256k1.
package crypto

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/cockroachdb/errors"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

const (
	privateKeySize = 32

	// compressMarker follows the scalar in WIF keys whose public key is
	// serialized compressed.
	compressMarker = 0x01
)

// PrivateKey wraps a secp256k1 private key together with the WIF metadata
// it was imported with.
type PrivateKey struct {
	key        *secp256k1.PrivateKey
	compressed bool
	net        *netparams.Params
}

// PublicKey wraps a secp256k1 public key and the serialization it is used
// with. The hash of that serialization is what addresses commit to.
type PublicKey struct {
	key        *secp256k1.PublicKey
	compressed bool
}

// DecodeWIF parses a WIF-encoded private key. The network is taken from the
// version byte.
func DecodeWIF(wif string) (*PrivateKey, error) {
	payload, version, err := base58.CheckDecode(wif)
	switch {
	case errors.Is(err, base58.ErrChecksum):
		return nil, errors.Wrap(txerr.ErrInvalidChecksum, "wif")
	case err != nil:
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "wif: %v", err)
	}

	// CheckDecode strips the version byte, so the payload is the scalar
	// optionally followed by the marker.
	var compressed bool
	switch len(payload) {
	case privateKeySize:
	case privateKeySize + 1:
		if payload[privateKeySize] != compressMarker {
			return nil, errors.Wrapf(txerr.ErrInvalidFormat,
				"wif: compression marker 0x%02x", payload[privateKeySize])
		}
		compressed = true
	default:
		return nil, errors.Wrapf(txerr.ErrInvalidFormat,
			"wif: payload is %d bytes, want %d or %d", len(payload)+1, privateKeySize+1, privateKeySize+2)
	}

	net, err := netparams.ByPrivateKeyID(version)
	if err != nil {
		return nil, errors.Wrap(err, "wif")
	}

	return NewPrivateKey(payload[:privateKeySize], compressed, net)
}

// NewPrivateKey creates a private key from a raw 32-byte scalar. The scalar
// must be in [1, n-1].
func NewPrivateKey(scalar []byte, compressed bool, net *netparams.Params) (*PrivateKey, error) {
	if len(scalar) != privateKeySize {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat,
			"private key: must be %d bytes, got %d", privateKeySize, len(scalar))
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "private key: scalar out of range")
	}

	return &PrivateKey{
		key:        secp256k1.NewPrivateKey(&s),
		compressed: compressed,
		net:        net,
	}, nil
}

// EncodeWIF encodes a raw scalar in WIF for the given network.
func EncodeWIF(scalar []byte, compressed bool, net *netparams.Params) (string, error) {
	if len(scalar) != privateKeySize {
		return "", errors.Wrapf(txerr.ErrInvalidFormat,
			"private key: must be %d bytes, got %d", privateKeySize, len(scalar))
	}

	payload := make([]byte, 0, privateKeySize+1)
	payload = append(payload, scalar...)
	if compressed {
		payload = append(payload, compressMarker)
	}
	return base58.CheckEncode(payload, net.PrivateKeyID), nil
}

// WIF returns the key in the encoding it was imported from.
func (pk *PrivateKey) WIF() string {
	// The scalar is always 32 bytes, so encoding cannot fail.
	s, _ := EncodeWIF(pk.Bytes(), pk.compressed, pk.net)
	return s
}

// Bytes returns the raw 32-byte scalar.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Compressed reports whether the public key is serialized compressed.
func (pk *PrivateKey) Compressed() bool {
	return pk.compressed
}

// Network returns the network the key was encoded for.
func (pk *PrivateKey) Network() *netparams.Params {
	return pk.net
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey(), compressed: pk.compressed}
}

// Sign creates a DER-encoded ECDSA signature over a 32-byte digest.
func (pk *PrivateKey) Sign(hash [32]byte) []byte {
	return ecdsa.Sign(pk.key, hash[:]).Serialize()
}

// Bytes returns the public key in its selected serialization.
func (pub *PublicKey) Bytes() []byte {
	if pub.compressed {
		return pub.key.SerializeCompressed()
	}
	return pub.key.SerializeUncompressed()
}

// Compressed reports whether Bytes returns the 33-byte form.
func (pub *PublicKey) Compressed() bool {
	return pub.compressed
}

// Hash returns HASH160 of the serialized public key.
func (pub *PublicKey) Hash() PubKeyHash {
	return Hash160(pub.Bytes())
}

// ParsePublicKey parses a 33-byte compressed or 65-byte uncompressed public
// key. The returned key keeps that serialization.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) != secp256k1.PubKeyBytesLenCompressed && len(b) != secp256k1.PubKeyBytesLenUncompressed {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "public key: %d bytes", len(b))
	}

	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "public key: %v", err)
	}
	return &PublicKey{key: key, compressed: len(b) == secp256k1.PubKeyBytesLenCompressed}, nil
}

// VerifySignature verifies a DER-encoded ECDSA signature.
func VerifySignature(pub *PublicKey, hash [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash[:], pub.key)
}
