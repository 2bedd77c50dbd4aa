package cache

import (
	"encoding/binary"
)

// Buffer is an offset cursor over a byte slice for sequential field reads.
type Buffer struct {
	data   []byte
	offset int
}

func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (buff *Buffer) Offset() int {
	return buff.offset
}

func (buff *Buffer) Cap() int {
	return cap(buff.data)
}

// Len remaining unread bytes
func (buff *Buffer) Len() int {
	return len(buff.data) - buff.offset
}

// Bytes remaining unread data
func (buff *Buffer) Bytes() []byte {
	return buff.data[buff.offset:]
}

func (buff *Buffer) ReadUint8() uint8 {
	result := buff.data[buff.offset]
	buff.offset++

	return result
}

// ReadHShort reads a big-endian uint16
func (buff *Buffer) ReadHShort() uint16 {
	result := binary.BigEndian.Uint16(buff.data[buff.offset:])
	buff.offset += 2

	return result
}

// ReadNLong reads a big-endian uint32
func (buff *Buffer) ReadNLong() uint32 {
	result := binary.BigEndian.Uint32(buff.data[buff.offset:])
	buff.offset += 4

	return result
}

func (buff *Buffer) Skip(n int) {
	buff.offset += n

	if buff.offset > len(buff.data) {
		buff.offset = len(buff.data)
	}
}

func (buff *Buffer) Unread(n int) {
	buff.offset -= n

	if buff.offset < 0 {
		buff.offset = 0
	}
}
