package address

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

func encodeLegacy(version byte, hash crypto.PubKeyHash) string {
	return base58.CheckEncode(hash[:], version)
}

func decodeLegacy(s string, net *netparams.Params) (crypto.PubKeyHash, error) {
	var hash crypto.PubKeyHash

	payload, version, err := base58.CheckDecode(s)
	switch {
	case errors.Is(err, base58.ErrChecksum):
		return hash, errors.Wrapf(txerr.ErrInvalidChecksum, "address %q", s)
	case err != nil:
		return hash, errors.Wrapf(txerr.ErrInvalidFormat, "address %q: %v", s, err)
	}

	if len(payload) != crypto.PubKeyHashSize {
		return hash, errors.Wrapf(txerr.ErrInvalidFormat,
			"address %q: payload is %d bytes, want %d", s, len(payload), crypto.PubKeyHashSize)
	}

	switch version {
	case net.PubKeyHashAddrID:
	case net.ScriptHashAddrID:
		return hash, errors.Wrapf(txerr.ErrUnsupportedScript, "address %q: pay-to-script-hash", s)
	default:
		if other, err := netparams.ByLegacyAddrID(version); err == nil {
			return hash, errors.Wrapf(txerr.ErrUnknownVersion,
				"address %q: version 0x%02x belongs to %s, not %s", s, version, other, net)
		}
		return hash, errors.Wrapf(txerr.ErrUnknownVersion, "address %q: version 0x%02x", s, version)
	}

	copy(hash[:], payload)
	return hash, nil
}
