package colorlight4go

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// NByte reads one byte at *offset and advances the cursor.
func NByte(buffer []byte, offset *int) uint8 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset)++
	}

	result := buffer[idx]

	return result
}

// N2HShort reads a big-endian uint16 at *offset and advances the cursor.
func N2HShort(buffer []byte, offset *int) uint16 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	result := binary.BigEndian.Uint16(buffer[idx:])

	return result
}

// H2NShort writes a big-endian uint16 at *offset and advances the cursor.
func H2NShort(buffer []byte, value uint16, offset *int) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	binary.BigEndian.PutUint16(buffer[idx:], value)
}

// ReadBytes copies len(dst) bytes from buffer at *offset and advances the
// cursor.
func ReadBytes(dst []byte, buffer []byte, offset *int) error {
	idx := 0

	if offset != nil {
		idx = *offset
	}
	buffer = buffer[idx:]

	if len(buffer) < len(dst) {
		return errors.WithStack(ErrInsufficientData)
	}

	if copyLen := copy(dst, buffer); offset != nil {
		*offset += copyLen
	}

	return nil
}
