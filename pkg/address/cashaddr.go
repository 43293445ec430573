package address

import (
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

const (
	cashAddrCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	// The 40-bit checksum is written as eight 5-bit symbols.
	cashAddrChecksumLen = 8

	cashAddrTypeP2PKH = 0
	cashAddrTypeP2SH  = 1

	// Size code 0 is a 160-bit hash.
	cashAddrSize160 = 0
)

var cashAddrCharsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range cashAddrCharset {
		rev[c] = int8(i)
	}
	return rev
}()

// polymod computes the cashaddr BCH checksum over 5-bit values.
func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

// expandPrefix returns the lower five bits of each prefix character followed
// by a zero separator.
func expandPrefix(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

func cashAddrChecksum(prefix string, payload []byte) []byte {
	values := expandPrefix(prefix)
	values = append(values, payload...)
	values = append(values, make([]byte, cashAddrChecksumLen)...)
	mod := polymod(values)

	out := make([]byte, cashAddrChecksumLen)
	for i := range out {
		out[i] = byte(mod>>(5*(cashAddrChecksumLen-1-i))) & 0x1f
	}
	return out
}

func verifyCashAddrChecksum(prefix string, values []byte) bool {
	return polymod(append(expandPrefix(prefix), values...)) == 0
}

// encodeCashAddr encodes hash with the given type as prefix:payload.
func encodeCashAddr(prefix string, addrType byte, hash []byte) string {
	versioned := make([]byte, 0, len(hash)+1)
	versioned = append(versioned, addrType<<3|cashAddrSize160)
	versioned = append(versioned, hash...)

	// Padding is requested, so regrouping cannot fail.
	data, _ := bech32.ConvertBits(versioned, 8, 5, true)
	data = append(data, cashAddrChecksum(prefix, data)...)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(data))
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, v := range data {
		sb.WriteByte(cashAddrCharset[v])
	}
	return sb.String()
}

// decodeCashAddr returns the P2PKH hash encoded in s for net.
func decodeCashAddr(s string, net *netparams.Params) (crypto.PubKeyHash, error) {
	var hash crypto.PubKeyHash

	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: mixed case", s)
	}

	prefix, payload := net.CashAddrPrefix, lower
	if i := strings.LastIndexByte(lower, ':'); i >= 0 {
		prefix, payload = lower[:i], lower[i+1:]
	}

	if len(payload) <= cashAddrChecksumLen {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: too short", s)
	}

	values := make([]byte, len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c >= 128 || cashAddrCharsetRev[c] < 0 {
			return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: invalid character %q", s, c)
		}
		values[i] = byte(cashAddrCharsetRev[c])
	}

	// The checksum covers the prefix, so a damaged prefix is a checksum
	// failure and only an intact foreign prefix is a network mismatch.
	if !verifyCashAddrChecksum(prefix, values) {
		return hash, errors.Wrapf(txerr.ErrInvalidAddressChecksum, "address %q", s)
	}
	if prefix != net.CashAddrPrefix {
		if other, err := netparams.ByCashAddrPrefix(prefix); err == nil {
			return hash, errors.Wrapf(txerr.ErrUnknownVersion,
				"address %q: belongs to %s, not %s", s, other, net)
		}
		return hash, errors.Wrapf(txerr.ErrUnknownVersion, "address %q: prefix %q", s, prefix)
	}

	versioned, err := bech32.ConvertBits(values[:len(values)-cashAddrChecksumLen], 5, 8, false)
	if err != nil {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: %v", s, err)
	}
	if len(versioned) == 0 {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: empty payload", s)
	}

	version := versioned[0]
	if version&0x80 != 0 {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: reserved version bit set", s)
	}
	switch addrType := version >> 3; addrType {
	case cashAddrTypeP2PKH:
	case cashAddrTypeP2SH:
		return hash, errors.Wrapf(txerr.ErrUnsupportedScript, "address %q: pay-to-script-hash", s)
	default:
		return hash, errors.Wrapf(txerr.ErrUnknownVersion, "address %q: type %d", s, addrType)
	}
	if version&0x07 != cashAddrSize160 || len(versioned)-1 != crypto.PubKeyHashSize {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat,
			"address %q: size code %d with %d-byte hash", s, version&0x07, len(versioned)-1)
	}

	copy(hash[:], versioned[1:])
	return hash, nil
}
