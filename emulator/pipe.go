package emulator

import (
	"sync"
	"time"

	origin_errors "errors"
)

var (
	// ErrClosed operation on a closed pipe
	ErrClosed = origin_errors.New("pipe transport closed")
	// ErrRecvTimeout no frame arrived within RecvTimeout
	ErrRecvTimeout = origin_errors.New("pipe receive timeout")
)

// RecvTimeout bounds one Recv call on a pipe endpoint, mirroring the pcap
// backend's bounded read. With the detect loop's 100 attempts a silent
// emulator fails a Detect in about a second.
var RecvTimeout = 10 * time.Millisecond

const pipeDepth = 1024

// Endpoint is one side of an in memory duplex frame channel implementing
// colorlight4go.Transport. Frames are copied on Send, receivers own what
// Recv returns.
type Endpoint struct {
	send chan<- []byte
	recv <-chan []byte
	done chan struct{}
	once *sync.Once
}

// Pipe connects two transports: frames sent on one are received on the
// other. Closing either endpoint closes both directions.
func Pipe() (*Endpoint, *Endpoint) {
	forward := make(chan []byte, pipeDepth)
	backward := make(chan []byte, pipeDepth)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &Endpoint{send: forward, recv: backward, done: done, once: once}
	b := &Endpoint{send: backward, recv: forward, done: done, once: once}

	return a, b
}

func (ep *Endpoint) Send(frame []byte) error {
	buff := make([]byte, len(frame))
	copy(buff, frame)

	select {
	case <-ep.done:
		return ErrClosed
	case ep.send <- buff:
		return nil
	}
}

func (ep *Endpoint) Recv() ([]byte, error) {
	timer := time.NewTimer(RecvTimeout)
	defer timer.Stop()

	select {
	case <-ep.done:
		return nil, ErrClosed
	case frame := <-ep.recv:
		return frame, nil
	case <-timer.C:
		return nil, ErrRecvTimeout
	}
}

func (ep *Endpoint) Close() error {
	ep.once.Do(func() {
		close(ep.done)
	})

	return nil
}
