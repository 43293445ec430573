package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Element is one parsed script element: an opcode and, for pushes, the
// pushed bytes.
type Element struct {
	Opcode byte
	Data   []byte
}

// IsPush reports whether the element pushes data. OP_0 counts as an empty push.
func (e Element) IsPush() bool {
	return e.Opcode <= OP_PUSHDATA4
}

// String renders the element the way Disassemble does.
func (e Element) String() string {
	if e.IsPush() {
		if len(e.Data) == 0 {
			return "OP_0"
		}
		return hex.EncodeToString(e.Data)
	}
	return OpcodeName(e.Opcode)
}

// Parse splits script into elements. Pushes whose declared length runs past
// the end of the script fail with txerr.ErrTruncatedData.
func Parse(script []byte) ([]Element, error) {
	var elems []Element

	for i := 0; i < len(script); {
		op := script[i]
		i++

		var n int
		switch {
		case op < OP_PUSHDATA1:
			n = int(op)
		case op == OP_PUSHDATA1:
			if i+1 > len(script) {
				return nil, errors.Wrapf(txerr.ErrTruncatedData, "script: OP_PUSHDATA1 length at offset %d", i)
			}
			n = int(script[i])
			i++
		case op == OP_PUSHDATA2:
			if i+2 > len(script) {
				return nil, errors.Wrapf(txerr.ErrTruncatedData, "script: OP_PUSHDATA2 length at offset %d", i)
			}
			n = int(binary.LittleEndian.Uint16(script[i:]))
			i += 2
		case op == OP_PUSHDATA4:
			if i+4 > len(script) {
				return nil, errors.Wrapf(txerr.ErrTruncatedData, "script: OP_PUSHDATA4 length at offset %d", i)
			}
			l := binary.LittleEndian.Uint32(script[i:])
			if uint64(l) > uint64(len(script)) {
				return nil, errors.Wrapf(txerr.ErrTruncatedData, "script: push of %d bytes at offset %d", l, i)
			}
			n = int(l)
			i += 4
		default:
			elems = append(elems, Element{Opcode: op})
			continue
		}

		if i+n > len(script) {
			return nil, errors.Wrapf(txerr.ErrTruncatedData,
				"script: push of %d bytes at offset %d, %d remaining", n, i, len(script)-i)
		}
		elems = append(elems, Element{Opcode: op, Data: script[i : i+n]})
		i += n
	}

	return elems, nil
}

// Disassemble renders script as space-separated opcode names and hex pushes.
// A script that cannot be parsed is rendered as "[error: ...]".
func Disassemble(script []byte) string {
	elems, err := Parse(script)
	if err != nil {
		return fmt.Sprintf("[error: %v]", err)
	}

	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

var opcodeNames = map[byte]string{
	OP_1NEGATE:       "OP_1NEGATE",
	0x50:             "OP_RESERVED",
	0x61:             "OP_NOP",
	0x63:             "OP_IF",
	0x64:             "OP_NOTIF",
	0x67:             "OP_ELSE",
	0x68:             "OP_ENDIF",
	0x69:             "OP_VERIFY",
	OP_RETURN:        "OP_RETURN",
	0x6b:             "OP_TOALTSTACK",
	0x6c:             "OP_FROMALTSTACK",
	0x73:             "OP_IFDUP",
	0x74:             "OP_DEPTH",
	0x75:             "OP_DROP",
	OP_DUP:           "OP_DUP",
	0x77:             "OP_NIP",
	0x78:             "OP_OVER",
	0x7c:             "OP_SWAP",
	0x7e:             "OP_CAT",
	0x7f:             "OP_SPLIT",
	0x82:             "OP_SIZE",
	OP_EQUAL:         "OP_EQUAL",
	OP_EQUALVERIFY:   "OP_EQUALVERIFY",
	0x93:             "OP_ADD",
	0x94:             "OP_SUB",
	0xa6:             "OP_RIPEMD160",
	0xa7:             "OP_SHA1",
	0xa8:             "OP_SHA256",
	OP_HASH160:       "OP_HASH160",
	0xaa:             "OP_HASH256",
	0xab:             "OP_CODESEPARATOR",
	OP_CHECKSIG:      "OP_CHECKSIG",
	0xad:             "OP_CHECKSIGVERIFY",
	OP_CHECKMULTISIG: "OP_CHECKMULTISIG",
	0xaf:             "OP_CHECKMULTISIGVERIFY",
	0xb1:             "OP_CHECKLOCKTIMEVERIFY",
	0xb2:             "OP_CHECKSEQUENCEVERIFY",
	0xba:             "OP_CHECKDATASIG",
	0xbb:             "OP_CHECKDATASIGVERIFY",
}

// OpcodeName returns the mnemonic for a non-push opcode.
func OpcodeName(op byte) string {
	if op >= OP_1 && op <= OP_16 {
		return fmt.Sprintf("OP_%d", op-OP_1+1)
	}
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN_0x%02x", op)
}
