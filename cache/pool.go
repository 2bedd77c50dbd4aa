package cache

import (
	"sync"
)

func AlignUp(x int) int {
	return (x + 1) &^ 1
}

// MaxBytesSize covers every fixed frame of the card protocol and row frames
// for panels up to ~1350 pixels wide.
const MaxBytesSize = 4096

// BytesPool recycles fixed size byte slices. Slices come back zeroed, which
// is what frame builders rely on for padding bytes.
type BytesPool struct {
	size int
	pool sync.Pool
}

func NewBytesPool(size int) *BytesPool {
	if size <= 0 {
		size = MaxBytesSize
	} else {
		size = AlignUp(size)

		if size > MaxBytesSize {
			size = MaxBytesSize
		}
	}

	return &BytesPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				return make([]byte, size)
			},
		},
	}
}

func (pool *BytesPool) Size() int {
	return pool.size
}

func (pool *BytesPool) GetSlice() []byte {
	bytes := pool.pool.Get().([]byte)
	for idx := range bytes {
		bytes[idx] = 0
	}

	return bytes
}

func (pool *BytesPool) GetBuffer() *Buffer {
	return NewBuffer(pool.GetSlice())
}

func (pool *BytesPool) PutSlice(data []byte) {
	if cap(data) < pool.size {
		return
	}

	pool.pool.Put(data[:pool.size])
}

func (pool *BytesPool) PutBuffer(buff *Buffer) {
	if cap(buff.data) < pool.size {
		return
	}

	pool.pool.Put(buff.data[:pool.size])
}
