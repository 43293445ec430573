package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bchotg/pkg/address"
	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/roles"
	"github.com/suffix-labs/bchotg/pkg/script"
	"github.com/suffix-labs/bchotg/pkg/tx"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

const (
	testWIF      = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"
	destCashAddr = "bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a"
	destLegacy   = "1BpEi6DfDAUFd7GtittLSdBeYJvcoaVggu"
	signerAddr   = "bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h"
)

// sweep builds a signed transaction spending one 100000 satoshi output
// with a fee of 1000.
func sweep(t *testing.T) ([]byte, chainhash.Hash) {
	t.Helper()

	key, err := crypto.DecodeWIF(testWIF)
	require.NoError(t, err)
	dest, err := address.Decode(destCashAddr, netparams.MainNet)
	require.NoError(t, err)
	op, err := tx.NewOutPoint(strings.Repeat("ab", 32), 1)
	require.NoError(t, err)

	c := roles.NewConstructor(roles.NewCreator(netparams.MainNet).Create())
	require.NoError(t, c.AddInput(tx.UTXO{OutPoint: op, Amount: 100_000}))
	_, err = c.AddSweepOutput(dest, 1_000)
	require.NoError(t, err)

	s := roles.NewSigner(c.Finish())
	require.NoError(t, s.SignInput(0, key))
	f := roles.NewSpendFinalizer(s.Finish())
	require.NoError(t, f.Finalize())

	raw, txid, err := roles.NewTxExtractor(f.Finish()).Extract()
	require.NoError(t, err)
	return raw, txid
}

func TestDecodeSweep(t *testing.T) {
	raw, txid := sweep(t)

	s, err := Decode(raw, []uint64{100_000}, Options{})
	require.NoError(t, err)

	assert.Equal(t, txid, s.TxID)
	assert.Equal(t, len(raw), s.Size)
	assert.Equal(t, uint32(2), s.Version)
	assert.Equal(t, uint32(0), s.LockTime)

	require.Len(t, s.Inputs, 1)
	in := s.Inputs[0]
	assert.Equal(t, uint32(1), in.OutPoint.Index)
	assert.Equal(t, strings.Repeat("ab", 32), in.OutPoint.Hash.String())
	assert.Equal(t, Valid, in.Verification, in.Detail)
	assert.Equal(t, byte(0x41), in.HashType)
	require.NotNil(t, in.Signer)
	assert.Equal(t, signerAddr, in.Signer.CashAddr.String())

	require.Len(t, s.Outputs, 1)
	out := s.Outputs[0]
	assert.Equal(t, uint64(99_000), out.Amount)
	require.True(t, out.Standard())
	assert.Equal(t, destCashAddr, out.Addresses.CashAddr.String())
	assert.Equal(t, destLegacy, out.Addresses.Legacy.String())
	assert.True(t, strings.HasPrefix(out.ScriptPubKey, "OP_DUP OP_HASH160 "))

	require.NotNil(t, s.Fee)
	assert.Equal(t, int64(1_000), *s.Fee)
	assert.Equal(t, uint64(100_000), *s.InputTotal)
	assert.Empty(t, s.Warnings)
}

func TestDecodeWithoutAmounts(t *testing.T) {
	raw, _ := sweep(t)

	s, err := Decode(raw, nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, s.Fee)
	assert.Nil(t, s.InputTotal)
	assert.Nil(t, s.Inputs[0].Amount)
	assert.Equal(t, Unchecked, s.Inputs[0].Verification)
	assert.Equal(t, "amount unknown", s.Inputs[0].Detail)
	assert.Empty(t, s.Warnings)
}

func TestDecodeWrongAmount(t *testing.T) {
	raw, _ := sweep(t)

	s, err := Decode(raw, []uint64{100_001}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Invalid, s.Inputs[0].Verification)
	assert.Equal(t, int64(1_001), *s.Fee)
}

// withOutputs returns an unsigned one-input transaction paying amounts.
func withOutputs(t *testing.T, amounts ...uint64) []byte {
	t.Helper()
	op, err := tx.NewOutPoint(strings.Repeat("03", 32), 0)
	require.NoError(t, err)

	unsigned := tx.New()
	unsigned.Inputs = append(unsigned.Inputs, tx.NewTxIn(tx.UTXO{OutPoint: op}))
	for _, amount := range amounts {
		unsigned.Outputs = append(unsigned.Outputs, tx.TxOut{
			Amount:       amount,
			ScriptPubKey: script.P2PKHLockingScript(crypto.Hash160([]byte("dest"))),
		})
	}
	return unsigned.Serialize()
}

func TestDecodeFeeWarnings(t *testing.T) {
	raw, _ := sweep(t)

	tests := []struct {
		name     string
		raw      []byte
		amount   uint64
		opts     Options
		warnings int
		noFee    bool
	}{
		{"plausible", raw, 100_000, Options{}, 0, false},
		{"above ten percent", raw, 110_001, Options{}, 1, false},
		{"above both", raw, 10_000_000, Options{}, 2, false},
		{"custom maximum", raw, 100_000, Options{MaxPlausibleFee: 500}, 1, false},
		{"negative", raw, 50_000, Options{}, 1, false},
		{"outputs wrap around", withOutputs(t, 1<<63, 1<<63+99_000), 100_000, Options{}, 2, true},
		{"output total above supply", withOutputs(t, tx.MaxSatoshi, 1), 100_000, Options{}, 1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Decode(tc.raw, []uint64{tc.amount}, tc.opts)
			require.NoError(t, err)
			assert.Len(t, s.Warnings, tc.warnings, s.Warnings)
			if tc.noFee {
				assert.Nil(t, s.Fee)
				assert.Nil(t, s.OutputTotal)
				assert.NotNil(t, s.InputTotal)
			} else {
				assert.NotNil(t, s.Fee)
			}
		})
	}
}

func TestDecodeOutputAboveSupply(t *testing.T) {
	s, err := Decode(withOutputs(t, 1<<63, 1<<63+99_000), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"output 0 exceeds the maximum supply",
		"output 1 exceeds the maximum supply",
	}, s.Warnings)

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	assert.Contains(t, buf.String(), "output total: out of range")
	assert.NotContains(t, buf.String(), "fee:")
}

func TestDecodeErrors(t *testing.T) {
	raw, _ := sweep(t)

	tests := []struct {
		name    string
		raw     []byte
		amounts []uint64
		want    error
	}{
		// The scriptSig starts at offset 42.
		{"truncated mid-script", raw[:60], nil, txerr.ErrTruncatedData},
		{"trailing byte", append(append([]byte{}, raw...), 0x00), nil, txerr.ErrTrailingData},
		{"too many amounts", raw, []uint64{1, 2}, txerr.ErrInvalidFormat},
		{"amount above supply", raw, []uint64{tx.MaxSatoshi + 1}, txerr.ErrInvalidFormat},
		{"empty", nil, nil, txerr.ErrTruncatedData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw, tc.amounts, Options{})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeNonStandard(t *testing.T) {
	op, err := tx.NewOutPoint(strings.Repeat("01", 32), 0)
	require.NoError(t, err)

	unsigned := tx.New()
	unsigned.Inputs = append(unsigned.Inputs, tx.NewTxIn(tx.UTXO{OutPoint: op}))
	unsigned.Outputs = append(unsigned.Outputs, tx.TxOut{
		Amount:       0,
		ScriptPubKey: []byte{script.OP_RETURN, 0x02, 0xbe, 0xef},
	})

	s, err := Decode(unsigned.Serialize(), []uint64{546}, Options{})
	require.NoError(t, err)

	assert.False(t, s.Outputs[0].Standard())
	assert.Equal(t, "OP_RETURN beef", s.Outputs[0].ScriptPubKey)
	assert.Equal(t, Unchecked, s.Inputs[0].Verification)
	assert.Equal(t, "not a P2PKH spend", s.Inputs[0].Detail)
}

func TestDecodeLegacySignature(t *testing.T) {
	key, err := crypto.DecodeWIF(testWIF)
	require.NoError(t, err)
	dest, err := address.Decode(destLegacy, netparams.MainNet)
	require.NoError(t, err)
	op, err := tx.NewOutPoint(strings.Repeat("02", 32), 0)
	require.NoError(t, err)

	legacy := tx.New()
	legacy.Inputs = append(legacy.Inputs, tx.NewTxIn(tx.UTXO{OutPoint: op, Amount: 5_000}))
	legacy.Outputs = append(legacy.Outputs, tx.TxOut{Amount: 4_000, ScriptPubKey: dest.ScriptPubKey()})

	pub := key.PublicKey()
	sighash, err := crypto.LegacySignatureHash(legacy, 0, script.P2PKHLockingScript(pub.Hash()))
	require.NoError(t, err)
	legacy.Inputs[0].ScriptSig = script.P2PKHSpendingScript(key.Sign(sighash), byte(crypto.SigHashAll), pub.Bytes())

	// Legacy signatures do not commit to the amount.
	s, err := Decode(legacy.Serialize(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, Valid, s.Inputs[0].Verification, s.Inputs[0].Detail)
	assert.Equal(t, byte(0x01), s.Inputs[0].HashType)

	// The same signature relabelled as FORKID no longer verifies.
	legacy.Inputs[0].ScriptSig = script.P2PKHSpendingScript(key.Sign(sighash), byte(crypto.SigHashAllForkID), pub.Bytes())
	s, err = Decode(legacy.Serialize(), []uint64{5_000}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Invalid, s.Inputs[0].Verification)
}

func TestDecodeUnsupportedHashTypes(t *testing.T) {
	key, err := crypto.DecodeWIF(testWIF)
	require.NoError(t, err)
	pub := key.PublicKey()
	op, err := tx.NewOutPoint(strings.Repeat("04", 32), 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hashType crypto.SigHashType
		detail   string
	}{
		{"legacy none", crypto.SigHashNone, "legacy hash type 0x02 not supported"},
		{"forkid anyone can pay", crypto.SigHashAllForkID | crypto.SigHashAnyoneCanPay, "0xc1"},
		{"forkid single", crypto.SigHashSingle | crypto.SigHashForkID, "0x43"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t1 := tx.New()
			t1.Inputs = append(t1.Inputs, tx.NewTxIn(tx.UTXO{OutPoint: op}))
			t1.Outputs = append(t1.Outputs, tx.TxOut{Amount: 1_000, ScriptPubKey: script.P2PKHLockingScript(pub.Hash())})
			t1.Inputs[0].ScriptSig = script.P2PKHSpendingScript(key.Sign([32]byte{}), byte(tc.hashType), pub.Bytes())

			s, err := Decode(t1.Serialize(), []uint64{2_000}, Options{})
			require.NoError(t, err)
			assert.Equal(t, Unchecked, s.Inputs[0].Verification)
			assert.Contains(t, s.Inputs[0].Detail, tc.detail)
			assert.Equal(t, byte(tc.hashType), s.Inputs[0].HashType)
		})
	}
}

func TestDecodeTestnetAddresses(t *testing.T) {
	raw, _ := sweep(t)

	s, err := Decode(raw, nil, Options{Net: netparams.TestNet})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.Outputs[0].Addresses.CashAddr.String(), "bchtest:"))
	assert.Equal(t, "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r", s.Inputs[0].Signer.Legacy.String())
}

func TestWriteText(t *testing.T) {
	raw, txid := sweep(t)

	s, err := Decode(raw, []uint64{100_000}, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	text := buf.String()

	assert.Contains(t, text, "txid:      "+txid.String())
	assert.Contains(t, text, "inputs: 1")
	assert.Contains(t, text, "outputs: 1")
	assert.Contains(t, text, "  #0 0.00099 BCH")
	assert.Contains(t, text, "to: "+destCashAddr+" "+destLegacy)
	assert.Contains(t, text, "signature: valid")
	assert.Contains(t, text, "output total: 0.00099 BCH")
	assert.Contains(t, text, "fee:          0.00001 BCH")
	assert.NotContains(t, text, "WARNING")
}
