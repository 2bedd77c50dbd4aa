package stream_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asamonik/colorlight4go"
	"github.com/asamonik/colorlight4go/stream"
)

type sinkTransport struct {
	sent    [][]byte
	failOn  int // fail the n-th Send (1 based), 0 disables
	sendErr error
}

func (tr *sinkTransport) Send(frame []byte) error {
	tr.sent = append(tr.sent, append([]byte(nil), frame...))

	if tr.failOn > 0 && len(tr.sent) == tr.failOn {
		return tr.sendErr
	}

	return nil
}

func (tr *sinkTransport) Recv() ([]byte, error) {
	return nil, errors.New("sink transport has no inbound traffic")
}

func (tr *sinkTransport) Close() error {
	return nil
}

func TestPushSendsRowsThenDisplayFrame(t *testing.T) {
	tr := &sinkTransport{}

	canvas := stream.NewCanvas(4, 3)
	canvas.Fill(0x10, 0x20, 0x30)

	streamer := stream.New(tr)
	streamer.Brightness = 0x80

	if err := streamer.Push(canvas); err != nil {
		t.Fatal(err)
	}

	if len(tr.sent) != 4 {
		t.Fatalf("sent %d frames", len(tr.sent))
	}

	for y := 0; y < 3; y++ {
		want := colorlight4go.BuildPixelRowFrame(uint16(y), canvas.Row(y))

		if !bytes.Equal(tr.sent[y], want) {
			t.Fatalf("row %d frame mismatch", y)
		}
	}

	want := colorlight4go.BuildDisplayFrame(0x80, 0xff, 0xff, 0xff)
	if !bytes.Equal(tr.sent[3], want) {
		t.Fatal("display frame mismatch")
	}
}

func TestPushReusesScratchWithoutCorruption(t *testing.T) {
	tr := &sinkTransport{}

	canvas := stream.NewCanvas(2, 2)
	canvas.SetRGB(0, 0, 1, 2, 3)
	canvas.SetRGB(1, 1, 4, 5, 6)

	streamer := stream.New(tr)

	if err := streamer.Push(canvas); err != nil {
		t.Fatal(err)
	}

	first := tr.sent[0]

	canvas.SetRGB(0, 0, 0xff, 0xff, 0xff)

	if err := streamer.Push(canvas); err != nil {
		t.Fatal(err)
	}

	// the first push's copy must not change when the scratch is reused
	if !bytes.Equal(first, tr.sent[0]) {
		t.Fatal("recorded frame mutated")
	}

	if bytes.Equal(tr.sent[0], tr.sent[3]) {
		t.Fatal("repaint not visible in second push")
	}
}

func TestPushWideCanvasGrowsScratch(t *testing.T) {
	tr := &sinkTransport{}

	// 2000 columns exceed the initial scratch capacity
	canvas := stream.NewCanvas(2000, 1)

	streamer := stream.New(tr)

	if err := streamer.Push(canvas); err != nil {
		t.Fatal(err)
	}

	if len(tr.sent[0]) != 14+7+2000*3 {
		t.Fatalf("row frame length: %d", len(tr.sent[0]))
	}
}

func TestPushPropagatesSendError(t *testing.T) {
	sendErr := errors.New("wire is down")
	tr := &sinkTransport{failOn: 2, sendErr: sendErr}

	streamer := stream.New(tr)

	err := streamer.Push(stream.NewCanvas(1, 3))

	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}

	// push aborts on the failed row, no display frame follows
	if len(tr.sent) != 2 {
		t.Fatalf("sent %d frames", len(tr.sent))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	tr := &sinkTransport{}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- stream.New(tr).Run(ctx, stream.NewCanvas(2, 2), time.Millisecond)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}

	if len(tr.sent) == 0 {
		t.Fatal("no frames pushed")
	}
}
