// Package address encodes public key hashes as Bitcoin Cash addresses.
//
// Two encodings of the same P2PKH payload are in use:
//   - Legacy: base-58 check of version byte || hash, shared with Bitcoin
//   - CashAddr: prefix ':' base-32 payload with a 40-bit BCH checksum
//
// Both round-trip: decoding either variant yields the hash that was encoded.
//
// References:
//   - https://reference.cash/protocol/blockchain/encoding/cashaddr
//   - https://en.bitcoin.it/wiki/Base58Check_encoding
package address

import (
	"strings"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/script"
)

// Encoding tags the textual form of an Address.
type Encoding int

// Address encodings.
const (
	Legacy Encoding = iota
	CashAddr
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case Legacy:
		return "legacy"
	case CashAddr:
		return "cashaddr"
	default:
		return "unknown"
	}
}

// Address is a P2PKH destination: a public key hash, the network it belongs
// to and the encoding it is written in.
type Address struct {
	Hash     crypto.PubKeyHash
	Encoding Encoding
	Net      *netparams.Params
}

// String encodes the address according to its tag.
func (a Address) String() string {
	if a.Encoding == CashAddr {
		return encodeCashAddr(a.Net.CashAddrPrefix, cashAddrTypeP2PKH, a.Hash[:])
	}
	return encodeLegacy(a.Net.PubKeyHashAddrID, a.Hash)
}

// ScriptPubKey returns the P2PKH locking script paying to the address.
func (a Address) ScriptPubKey() []byte {
	return script.P2PKHLockingScript(a.Hash)
}

// As returns the same destination written in another encoding.
func (a Address) As(e Encoding) Address {
	a.Encoding = e
	return a
}

// Pair holds both encodings of one public key hash.
type Pair struct {
	Legacy   Address
	CashAddr Address
}

// FromHash returns both encodings of hash on net.
func FromHash(hash crypto.PubKeyHash, net *netparams.Params) Pair {
	return Pair{
		Legacy:   Address{Hash: hash, Encoding: Legacy, Net: net},
		CashAddr: Address{Hash: hash, Encoding: CashAddr, Net: net},
	}
}

// FromPublicKey hashes pub once and returns both encodings.
func FromPublicKey(pub *crypto.PublicKey, net *netparams.Params) Pair {
	return FromHash(pub.Hash(), net)
}

// Decode parses a legacy or cashaddr address for net. A nil net means
// MainNet. CashAddr strings may omit the prefix, in which case net's prefix
// is assumed.
func Decode(s string, net *netparams.Params) (Address, error) {
	if net == nil {
		net = netparams.MainNet
	}
	s = strings.TrimSpace(s)

	if looksLikeCashAddr(s) {
		hash, err := decodeCashAddr(s, net)
		if err != nil {
			return Address{}, err
		}
		return Address{Hash: hash, Encoding: CashAddr, Net: net}, nil
	}

	hash, err := decodeLegacy(s, net)
	if err != nil {
		return Address{}, err
	}
	return Address{Hash: hash, Encoding: Legacy, Net: net}, nil
}

// looksLikeCashAddr reports whether s is a prefixed cashaddr or a bare
// payload. Bare P2PKH and P2SH payloads start with 'q' and 'p', which no
// legacy address of a known network does.
func looksLikeCashAddr(s string) bool {
	if strings.Contains(s, ":") {
		return true
	}
	if s == "" {
		return false
	}
	switch s[0] {
	case 'q', 'p', 'Q', 'P':
		return true
	}
	return false
}
