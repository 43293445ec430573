package tx

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

const testTxID = "d5ada064c6417ca25c4308bd158c34b77e1c0eca2a73cda16c737e7424afba2f"

// sampleTransaction builds a signed-looking two-input, two-output transaction.
func sampleTransaction(t *testing.T) *Transaction {
	t.Helper()

	op0, err := NewOutPoint(testTxID, 0)
	require.NoError(t, err)
	op1, err := NewOutPoint(testTxID, 7)
	require.NoError(t, err)

	tx := New()
	in0 := NewTxIn(UTXO{OutPoint: op0, Amount: 100_000})
	in0.ScriptSig = bytes.Repeat([]byte{0xab}, 106)
	in1 := NewTxIn(UTXO{OutPoint: op1, Amount: 50_000})
	in1.ScriptSig = bytes.Repeat([]byte{0xcd}, 300) // forces a 3-byte varint
	tx.Inputs = append(tx.Inputs, in0, in1)

	tx.Outputs = append(tx.Outputs,
		TxOut{Amount: 99_000, ScriptPubKey: bytes.Repeat([]byte{0x01}, 25)},
		TxOut{Amount: 50_000, ScriptPubKey: []byte{0x6a}},
	)
	return tx
}

func TestNewOutPointDisplayOrder(t *testing.T) {
	op, err := NewOutPoint(testTxID, 3)
	require.NoError(t, err)

	// Internal order is the reverse of the display form.
	display, _ := hex.DecodeString(testTxID)
	assert.Equal(t, display[31], op.Hash[0])
	assert.Equal(t, display[0], op.Hash[31])
	assert.Equal(t, testTxID, op.Hash.String())
	assert.Equal(t, uint32(3), op.Index)
}

func TestNewOutPointInvalid(t *testing.T) {
	for _, s := range []string{"", "abcd", testTxID + "00", "zz" + testTxID[2:]} {
		_, err := NewOutPoint(s, 0)
		require.ErrorIs(t, err, txerr.ErrInvalidFormat, s)
	}
}

func TestSerializeLayout(t *testing.T) {
	tx := sampleTransaction(t)
	raw := tx.Serialize()

	// version
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00}, raw[:4])
	// input count
	assert.Equal(t, byte(0x02), raw[4])
	// first prevout txid is written in internal order
	assert.Equal(t, tx.Inputs[0].UTXO.Hash[:], raw[5:37])
	// prevout index 0
	assert.Equal(t, []byte{0, 0, 0, 0}, raw[37:41])
	// scriptSig length 106
	assert.Equal(t, byte(106), raw[41])
	// sequence after the script
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, raw[42+106:42+106+4])
	// lock time
	assert.Equal(t, []byte{0, 0, 0, 0}, raw[len(raw)-4:])
}

func TestRoundTrip(t *testing.T) {
	tx := sampleTransaction(t)
	raw := tx.Serialize()

	parsed, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, tx.Version, parsed.Version)
	assert.Equal(t, tx.LockTime, parsed.LockTime)
	require.Len(t, parsed.Inputs, 2)
	require.Len(t, parsed.Outputs, 2)
	for i := range tx.Inputs {
		assert.Equal(t, tx.Inputs[i].UTXO.OutPoint, parsed.Inputs[i].UTXO.OutPoint)
		assert.Equal(t, tx.Inputs[i].ScriptSig, parsed.Inputs[i].ScriptSig)
		assert.Equal(t, tx.Inputs[i].Sequence, parsed.Inputs[i].Sequence)
	}
	assert.Equal(t, tx.Outputs, parsed.Outputs)

	assert.Equal(t, raw, parsed.Serialize())
	assert.Equal(t, tx.TxID(), parsed.TxID())
}

// TestMatchesWire checks the encoding and txid against btcd's wire package.
func TestMatchesWire(t *testing.T) {
	tx := sampleTransaction(t)
	raw := tx.Serialize()

	var msg wire.MsgTx
	require.NoError(t, msg.Deserialize(bytes.NewReader(raw)))

	assert.Equal(t, int32(2), msg.Version)
	require.Len(t, msg.TxIn, 2)
	assert.Equal(t, uint32(7), msg.TxIn[1].PreviousOutPoint.Index)
	assert.Equal(t, testTxID, msg.TxIn[1].PreviousOutPoint.Hash.String())
	require.Len(t, msg.TxOut, 2)
	assert.Equal(t, int64(99_000), msg.TxOut[0].Value)

	var buf bytes.Buffer
	require.NoError(t, msg.Serialize(&buf))
	assert.Equal(t, raw, buf.Bytes())
	assert.Equal(t, msg.TxHash().String(), tx.TxID().String())
}

func TestParseErrors(t *testing.T) {
	raw := sampleTransaction(t).Serialize()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, txerr.ErrTruncatedData},
		{"version only", raw[:4], txerr.ErrTruncatedData},
		{"truncated mid-script", raw[:60], txerr.ErrTruncatedData},
		{"missing lock time", raw[:len(raw)-2], txerr.ErrTruncatedData},
		{"trailing byte", append(append([]byte{}, raw...), 0x00), txerr.ErrTrailingData},
		{"version 3", append([]byte{0x03, 0, 0, 0}, raw[4:]...), txerr.ErrUnknownVersion},
		{"huge input count", []byte{0x02, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff, 0x00}, txerr.ErrTruncatedData},
		{"non-canonical count", []byte{0x02, 0, 0, 0, 0xfd, 0x01, 0x00}, txerr.ErrInvalidFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.data)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseDeclaredScriptTooLong(t *testing.T) {
	tx := sampleTransaction(t)
	raw := tx.Serialize()

	// Input 0 scriptSig length byte sits at offset 41; claim more than is left.
	bad := append([]byte{}, raw...)
	bad[41] = 0xfc
	bad = bad[:41+1+20]

	_, err := Parse(bad)
	require.ErrorIs(t, err, txerr.ErrTruncatedData)
	assert.Contains(t, err.Error(), "input 0")
	assert.Contains(t, err.Error(), "scriptSig")
}

func TestCompactSize(t *testing.T) {
	tests := []struct {
		n       uint64
		encoded string
	}{
		{0, "00"},
		{0xfc, "fc"},
		{0xfd, "fdfd00"},
		{0xffff, "fdffff"},
		{0x10000, "fe00000100"},
		{0xffffffff, "feffffffff"},
		{0x100000000, "ff0000000001000000"},
	}

	for _, tc := range tests {
		var buf bytes.Buffer
		WriteCompactSize(&buf, tc.n)
		assert.Equal(t, tc.encoded, hex.EncodeToString(buf.Bytes()))
		assert.Equal(t, len(tc.encoded)/2, CompactSizeLen(tc.n))

		got, err := ReadCompactSize(bytes.NewReader(buf.Bytes()), "n")
		require.NoError(t, err)
		assert.Equal(t, tc.n, got)
	}
}

func TestCompactSizeRejectsNonCanonical(t *testing.T) {
	for _, s := range []string{"fd0100", "fe0000ff00", "ffffffffff00000000"} {
		b, _ := hex.DecodeString(s)
		_, err := ReadCompactSize(bytes.NewReader(b), "n")
		require.ErrorIs(t, err, txerr.ErrInvalidFormat, s)
	}
}

func TestTotals(t *testing.T) {
	tx := sampleTransaction(t)
	assert.Equal(t, uint64(150_000), tx.InputTotal())
	assert.Equal(t, uint64(149_000), tx.OutputTotal())
	assert.True(t, tx.IsSigned())

	tx.Inputs[1].ScriptSig = nil
	assert.False(t, tx.IsSigned())
	assert.False(t, New().IsSigned())
}

func TestSerializeSize(t *testing.T) {
	tx := sampleTransaction(t)
	assert.Equal(t, len(tx.Serialize()), tx.SerializeSize())

	// A scriptSig of 0xfd bytes needs a three-byte length prefix.
	tx.Inputs[1].ScriptSig = make([]byte, 0xfd)
	assert.Equal(t, len(tx.Serialize()), tx.SerializeSize())

	assert.Equal(t, 10, New().SerializeSize())
}
