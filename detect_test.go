package colorlight4go_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/asamonik/colorlight4go"
)

type recvStep struct {
	frame []byte
	err   error
}

// scriptTransport replays a fixed receive script and records every frame
// sent through it.
type scriptTransport struct {
	script    []recvStep
	recvCalls int
	sent      [][]byte
	sendErrAt int // fail the n-th Send (1 based), 0 disables
	closed    bool
}

var errStub = errors.New("stub transport error")

func (tr *scriptTransport) Send(frame []byte) error {
	tr.sent = append(tr.sent, append([]byte(nil), frame...))

	if tr.sendErrAt > 0 && len(tr.sent) == tr.sendErrAt {
		return errStub
	}

	return nil
}

func (tr *scriptTransport) Recv() ([]byte, error) {
	step := recvStep{err: errStub}

	if tr.recvCalls < len(tr.script) {
		step = tr.script[tr.recvCalls]
	}

	tr.recvCalls++

	return step.frame, step.err
}

func (tr *scriptTransport) Close() error {
	tr.closed = true
	return nil
}

func junkSteps(n int) []recvStep {
	steps := make([]recvStep, 0, n)

	for idx := 0; idx < n; idx++ {
		switch idx % 3 {
		case 0:
			steps = append(steps, recvStep{err: errStub})
		case 1:
			steps = append(steps, recvStep{frame: []byte{0x11, 0x22}})
		default:
			steps = append(steps, recvStep{frame: colorlight4go.BuildDisplayFrame(1, 2, 3, 4)})
		}
	}

	return steps
}

func TestDetectLastAttemptMatch(t *testing.T) {
	response := colorlight4go.BuildDetectResponse(colorlight4go.ReceiverCardInfo{
		VersionMajor: 1,
		VersionMinor: 2,
		PixelColumns: 256,
		PixelRows:    512,
	})

	tr := &scriptTransport{script: append(junkSteps(99), recvStep{frame: response})}

	info, err := colorlight4go.NewCard(tr).Detect()
	if err != nil {
		t.Fatal(err)
	}

	if info.PixelColumns != 256 || info.PixelRows != 512 {
		t.Fatalf("geometry: %+v", info)
	}

	if tr.recvCalls > colorlight4go.MaxDetectAttempts {
		t.Fatalf("recv calls: %d", tr.recvCalls)
	}

	if len(tr.sent) != 2 {
		t.Fatalf("sent %d frames", len(tr.sent))
	}

	if !bytes.Equal(tr.sent[0], colorlight4go.BuildDetectRequest()) {
		t.Fatal("first frame is not the detect request")
	}

	if !bytes.Equal(tr.sent[1], colorlight4go.BuildDetectAck()) {
		t.Fatal("second frame is not the detect ack")
	}
}

func TestDetectFirstAttemptMatch(t *testing.T) {
	response := colorlight4go.BuildDetectResponse(colorlight4go.ReceiverCardInfo{
		VersionMajor: 5, VersionMinor: 0, PixelColumns: 64, PixelRows: 32,
	})

	tr := &scriptTransport{script: []recvStep{{frame: response}}}

	info, err := colorlight4go.NewCard(tr).Detect()
	if err != nil {
		t.Fatal(err)
	}

	if tr.recvCalls != 1 {
		t.Fatalf("recv calls: %d", tr.recvCalls)
	}

	if info.PixelColumns != 64 {
		t.Fatalf("geometry: %+v", info)
	}
}

func TestDetectTimeout(t *testing.T) {
	tr := &scriptTransport{script: junkSteps(200)}

	_, err := colorlight4go.NewCard(tr).Detect()

	if !errors.Is(err, colorlight4go.ErrDetectTimeout) {
		t.Fatalf("expected detect timeout, got %v", err)
	}

	if tr.recvCalls != colorlight4go.MaxDetectAttempts {
		t.Fatalf("recv calls: %d", tr.recvCalls)
	}

	// no ack on timeout, only the request went out
	if len(tr.sent) != 1 {
		t.Fatalf("sent %d frames", len(tr.sent))
	}
}

func TestDetectRequestSendFailure(t *testing.T) {
	tr := &scriptTransport{sendErrAt: 1}

	_, err := colorlight4go.NewCard(tr).Detect()

	if !errors.Is(err, errStub) {
		t.Fatalf("expected transport error, got %v", err)
	}

	if tr.recvCalls != 0 {
		t.Fatalf("recv calls: %d", tr.recvCalls)
	}
}

func TestDetectAckSendFailureFailsDetect(t *testing.T) {
	response := colorlight4go.BuildDetectResponse(colorlight4go.ReceiverCardInfo{
		VersionMajor: 1, VersionMinor: 0, PixelColumns: 128, PixelRows: 128,
	})

	tr := &scriptTransport{
		script:    []recvStep{{frame: response}},
		sendErrAt: 2,
	}

	_, err := colorlight4go.NewCard(tr).Detect()

	if !errors.Is(err, errStub) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDetectShortMatchingResponse(t *testing.T) {
	// a matching frame with fewer than 24 payload bytes parses to the zero
	// info instead of failing, and the handshake still completes
	short := make([]byte, 20)
	copy(short, colorlight4go.BuildDetectResponse(colorlight4go.ReceiverCardInfo{})[:20])

	tr := &scriptTransport{script: []recvStep{{frame: short}}}

	info, err := colorlight4go.NewCard(tr).Detect()
	if err != nil {
		t.Fatal(err)
	}

	if !info.IsZero() {
		t.Fatalf("expected zero info: %+v", info)
	}

	if len(tr.sent) != 2 {
		t.Fatalf("sent %d frames", len(tr.sent))
	}
}
