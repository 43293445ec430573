package tx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// WriteCompactSize writes n in Bitcoin's variable-length integer encoding:
//   - < 0xFD: 1 byte (the value itself)
//   - <= 0xFFFF: 0xFD + 2 bytes little-endian
//   - <= 0xFFFFFFFF: 0xFE + 4 bytes little-endian
//   - otherwise: 0xFF + 8 bytes little-endian
func WriteCompactSize(w io.Writer, n uint64) {
	switch {
	case n < 0xFD:
		w.Write([]byte{byte(n)})
	case n <= 0xFFFF:
		w.Write([]byte{0xFD})
		binary.Write(w, binary.LittleEndian, uint16(n))
	case n <= 0xFFFFFFFF:
		w.Write([]byte{0xFE})
		binary.Write(w, binary.LittleEndian, uint32(n))
	default:
		w.Write([]byte{0xFF})
		binary.Write(w, binary.LittleEndian, n)
	}
}

// CompactSizeLen returns the number of bytes WriteCompactSize uses for n.
func CompactSizeLen(n uint64) int {
	switch {
	case n < 0xFD:
		return 1
	case n <= 0xFFFF:
		return 3
	case n <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// ReadCompactSize reads a variable-length integer. field names the value in
// errors. Encodings that are longer than necessary are rejected, so that a
// parsed transaction always re-serializes to the same bytes.
func ReadCompactSize(r *bytes.Reader, field string) (uint64, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrapf(txerr.ErrTruncatedData, "%s: missing", field)
	}

	var size int
	var min uint64
	switch prefix {
	case 0xFD:
		size, min = 2, 0xFD
	case 0xFE:
		size, min = 4, 0x10000
	case 0xFF:
		size, min = 8, 0x100000000
	default:
		return uint64(prefix), nil
	}

	if r.Len() < size {
		return 0, errors.Wrapf(txerr.ErrTruncatedData,
			"%s: need %d bytes after 0x%02x, have %d", field, size, prefix, r.Len())
	}
	buf := make([]byte, 8)
	io.ReadFull(r, buf[:size])
	n := binary.LittleEndian.Uint64(buf)

	if n < min {
		return 0, errors.Wrapf(txerr.ErrInvalidFormat, "%s: non-canonical varint %d", field, n)
	}
	return n, nil
}
