// Package netparams holds the per-network constants used to encode keys and
// addresses.
//
// A network is identified by three independent tags: the WIF version byte of
// private keys, the base-58 version bytes of legacy addresses and the
// human-readable prefix of cashaddr addresses. Testnet and regtest share
// their version bytes, so a key or legacy address alone always resolves to
// TestNet.
package netparams

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Params describes one network.
type Params struct {
	Name string

	// CashAddrPrefix is the human-readable part of cashaddr addresses.
	CashAddrPrefix string

	// Legacy base-58 address versions.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte

	// PrivateKeyID is the WIF version byte.
	PrivateKeyID byte
}

var (
	// MainNet is the Bitcoin Cash main network.
	MainNet = &Params{
		Name:             "mainnet",
		CashAddrPrefix:   "bitcoincash",
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
	}

	// TestNet is the public test network.
	TestNet = &Params{
		Name:             "testnet",
		CashAddrPrefix:   "bchtest",
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
	}

	// RegTest is the local regression test network.
	RegTest = &Params{
		Name:             "regtest",
		CashAddrPrefix:   "bchreg",
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
	}
)

// registered is searched in order, so TestNet wins over RegTest for shared bytes.
var registered = []*Params{MainNet, TestNet, RegTest}

// ByName returns the network with the given name.
func ByName(name string) (*Params, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range registered {
		if p.Name == n {
			return p, nil
		}
	}
	return nil, errors.Wrapf(txerr.ErrUnknownVersion, "network %q", name)
}

// ByPrivateKeyID returns the network whose WIF version byte is id.
func ByPrivateKeyID(id byte) (*Params, error) {
	for _, p := range registered {
		if p.PrivateKeyID == id {
			return p, nil
		}
	}
	return nil, errors.Wrapf(txerr.ErrUnknownVersion, "private key version byte 0x%02x", id)
}

// ByLegacyAddrID returns the network whose legacy P2PKH or P2SH version byte
// is id.
func ByLegacyAddrID(id byte) (*Params, error) {
	for _, p := range registered {
		if p.PubKeyHashAddrID == id || p.ScriptHashAddrID == id {
			return p, nil
		}
	}
	return nil, errors.Wrapf(txerr.ErrUnknownVersion, "address version byte 0x%02x", id)
}

// ByCashAddrPrefix returns the network with the given cashaddr prefix. The
// comparison is case-insensitive.
func ByCashAddrPrefix(prefix string) (*Params, error) {
	lower := strings.ToLower(prefix)
	for _, p := range registered {
		if p.CashAddrPrefix == lower {
			return p, nil
		}
	}
	return nil, errors.Wrapf(txerr.ErrUnknownVersion, "cashaddr prefix %q", prefix)
}

// String returns the network name.
func (p *Params) String() string {
	return p.Name
}
