// Package stream pushes whole framebuffers to a receiver card: every canvas
// row as a pixel row frame, then one display frame to latch the image.
package stream

import (
	"context"
	"time"

	"github.com/frozenpine/pool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/asamonik/colorlight4go"
)

// Streamer drives one card's panel from a Canvas. Not safe for concurrent
// use, one goroutine owns a Streamer and its canvas.
type Streamer struct {
	tr colorlight4go.Transport

	// Brightness and the per channel scale go into the display frame that
	// latches every push. 0xff means 100%.
	Brightness byte
	ScaleR     byte
	ScaleG     byte
	ScaleB     byte

	scratch []byte
}

func New(tr colorlight4go.Transport) *Streamer {
	return &Streamer{
		tr:         tr,
		Brightness: 0xff,
		ScaleR:     0xff,
		ScaleG:     0xff,
		ScaleB:     0xff,
		scratch:    make([]byte, 0, pool.MaxBytesSize),
	}
}

func (streamer *Streamer) grow(size int) {
	if cap(streamer.scratch) >= size {
		return
	}

	retired := streamer.scratch
	streamer.scratch = make([]byte, 0, size*2)
	pool.PutByteSlice(retired)
}

// Push sends every canvas row followed by one display frame.
func (streamer *Streamer) Push(canvas *Canvas) error {
	rowFrameLen := colorlight4go.EtherHeaderSize +
		colorlight4go.RowHeaderLen + canvas.Cols()*3

	streamer.grow(rowFrameLen)

	for y := 0; y < canvas.Rows(); y++ {
		frame := colorlight4go.AppendPixelRowFrame(
			streamer.scratch[:0], uint16(y), canvas.Row(y),
		)

		if err := streamer.tr.Send(frame); err != nil {
			return errors.Wrapf(err, "push row %d", y)
		}
	}

	return errors.Wrap(
		streamer.tr.Send(colorlight4go.BuildDisplayFrame(
			streamer.Brightness,
			streamer.ScaleR, streamer.ScaleG, streamer.ScaleB,
		)),
		"push display frame",
	)
}

// Run pushes the canvas on every tick until ctx is done. The caller may
// repaint the canvas between ticks.
func (streamer *Streamer) Run(ctx context.Context, canvas *Canvas, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().
		Int("cols", canvas.Cols()).
		Int("rows", canvas.Rows()).
		Dur("interval", interval).
		Msg("streaming started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("streaming stopped")
			return nil
		case <-ticker.C:
			if err := streamer.Push(canvas); err != nil {
				log.Error().Err(err).Msg("push failed")
				return err
			}
		}
	}
}
