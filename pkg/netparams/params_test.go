package netparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

func TestLookups(t *testing.T) {
	p, err := ByName(" MainNet ")
	require.NoError(t, err)
	assert.Same(t, MainNet, p)

	p, err = ByPrivateKeyID(0x80)
	require.NoError(t, err)
	assert.Same(t, MainNet, p)

	// Shared version bytes resolve to testnet.
	p, err = ByPrivateKeyID(0xef)
	require.NoError(t, err)
	assert.Same(t, TestNet, p)

	p, err = ByLegacyAddrID(0xc4)
	require.NoError(t, err)
	assert.Same(t, TestNet, p)

	p, err = ByCashAddrPrefix("BCHREG")
	require.NoError(t, err)
	assert.Same(t, RegTest, p)
}

func TestUnknownNetworks(t *testing.T) {
	_, err := ByName("litecoin")
	require.ErrorIs(t, err, txerr.ErrUnknownVersion)

	_, err = ByPrivateKeyID(0x01)
	require.ErrorIs(t, err, txerr.ErrUnknownVersion)

	_, err = ByLegacyAddrID(0x30)
	require.ErrorIs(t, err, txerr.ErrUnknownVersion)

	_, err = ByCashAddrPrefix("bitcoin")
	require.ErrorIs(t, err, txerr.ErrUnknownVersion)
	assert.Equal(t, "UnknownVersion", txerr.Kind(err))
}
