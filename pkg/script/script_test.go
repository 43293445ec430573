package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

func mustHash(t *testing.T, s string) crypto.PubKeyHash {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	var h crypto.PubKeyHash
	copy(h[:], b)
	return h
}

func TestP2PKHLockingScript(t *testing.T) {
	hash := mustHash(t, "751e76e8199196d454941c45d1b3a323f1433bd6")
	script := P2PKHLockingScript(hash)

	assert.Equal(t, "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac", hex.EncodeToString(script))

	want, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).AddOp(txscript.OP_HASH160).
		AddData(hash[:]).
		AddOp(txscript.OP_EQUALVERIFY).AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	assert.Equal(t, want, script)

	got, ok := ExtractPubKeyHash(script)
	require.True(t, ok)
	assert.Equal(t, hash, got)
}

func TestExtractPubKeyHashRejectsOtherScripts(t *testing.T) {
	valid := P2PKHLockingScript(crypto.PubKeyHash{1, 2, 3})

	p2sh, _ := hex.DecodeString("a914" + "0102030405060708090a0b0c0d0e0f1011121314" + "87")
	tests := map[string][]byte{
		"empty":       nil,
		"p2sh":        p2sh,
		"op_return":   {OP_RETURN, 0x02, 0xca, 0xfe},
		"short":       valid[:24],
		"long":        append(bytes.Clone(valid), OP_CHECKSIG),
		"wrong final": append(bytes.Clone(valid[:24]), OP_EQUAL),
	}

	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := ExtractPubKeyHash(s)
			assert.False(t, ok)
		})
	}
}

func TestPushEncodingMatchesBtcd(t *testing.T) {
	for _, n := range []int{2, 75, 76, 255, 256, 520} {
		data := bytes.Repeat([]byte{0x5a}, n)

		var buf bytes.Buffer
		writePush(&buf, data)

		want, err := txscript.NewScriptBuilder().AddData(data).Script()
		require.NoError(t, err)
		assert.Equal(t, want, buf.Bytes(), "push of %d bytes", n)
	}

	// Beyond btcd's element limit; checked by hand.
	var buf bytes.Buffer
	writePush(&buf, make([]byte, 0x10000))
	assert.Equal(t, []byte{OP_PUSHDATA4, 0x00, 0x00, 0x01, 0x00}, buf.Bytes()[:5])
}

func TestP2PKHSpendingScriptRoundTrip(t *testing.T) {
	sig := bytes.Repeat([]byte{0x30}, 71)
	pub := append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...)

	scriptSig := P2PKHSpendingScript(sig, 0x41, pub)
	require.Len(t, scriptSig, 1+72+1+33)
	assert.Equal(t, byte(72), scriptSig[0])
	assert.Equal(t, byte(0x41), scriptSig[72])
	assert.Equal(t, byte(33), scriptSig[73])

	spend, err := ParseP2PKHSpend(scriptSig)
	require.NoError(t, err)
	assert.Equal(t, sig, spend.Signature)
	assert.Equal(t, byte(0x41), spend.HashType)
	assert.Equal(t, pub, spend.PubKey)
}

func TestParseP2PKHSpendErrors(t *testing.T) {
	pub := append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...)
	sig := bytes.Repeat([]byte{0x30}, 70)

	tests := []struct {
		name   string
		script []byte
		want   error
	}{
		{"empty", nil, txerr.ErrUnsupportedScript},
		{"one push", []byte{0x02, 0xaa, 0xbb}, txerr.ErrUnsupportedScript},
		{"opcode instead of pubkey", append([]byte{0x01, 0x41}, OP_DUP), txerr.ErrUnsupportedScript},
		{"bad pubkey size", P2PKHSpendingScript(sig, 0x41, pub[:20]), txerr.ErrUnsupportedScript},
		{"three pushes", append(P2PKHSpendingScript(sig, 0x41, pub), 0x01, 0x00), txerr.ErrUnsupportedScript},
		{"truncated push", []byte{0x48, 0x30, 0x45}, txerr.ErrTruncatedData},
		{"truncated pushdata2 length", []byte{OP_PUSHDATA2, 0x01}, txerr.ErrTruncatedData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseP2PKHSpend(tc.script)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDisassemble(t *testing.T) {
	hash := mustHash(t, "751e76e8199196d454941c45d1b3a323f1433bd6")

	assert.Equal(t,
		"OP_DUP OP_HASH160 751e76e8199196d454941c45d1b3a323f1433bd6 OP_EQUALVERIFY OP_CHECKSIG",
		Disassemble(P2PKHLockingScript(hash)))

	assert.Equal(t, "OP_RETURN cafe", Disassemble([]byte{OP_RETURN, 0x02, 0xca, 0xfe}))
	assert.Equal(t, "OP_0 OP_1 OP_16 OP_CHECKMULTISIG", Disassemble([]byte{OP_0, OP_1, OP_16, OP_CHECKMULTISIG}))
	assert.Equal(t, "OP_UNKNOWN_0xff", Disassemble([]byte{0xff}))
	assert.Equal(t, "", Disassemble(nil))
	assert.Contains(t, Disassemble([]byte{0x05, 0x01}), "[error:")
}
