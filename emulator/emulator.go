// Package emulator is a software receiver card: it answers detect requests
// with a configured identity and records display parameters and pixel rows,
// so controller code can run against the wire protocol without hardware.
package emulator

import (
	"context"
	"sync"

	origin_errors "errors"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/valyala/bytebufferpool"

	"github.com/asamonik/colorlight4go"
	"github.com/asamonik/colorlight4go/cache"
)

// DisplayState content of the last display frame seen by the card.
type DisplayState struct {
	Brightness byte
	ScaleR     byte
	ScaleG     byte
	ScaleB     byte
}

// Card is one emulated receiver card. All recorded state is safe to read
// while Serve runs.
type Card struct {
	Info colorlight4go.ReceiverCardInfo

	mu      sync.Mutex
	acked   bool
	display *DisplayState
	rows    map[uint16][]byte
	senders map[string]int

	rowPool *cache.BytesPool
}

func NewCard(info colorlight4go.ReceiverCardInfo) *Card {
	return &Card{
		Info:    info,
		rows:    map[uint16][]byte{},
		senders: map[string]int{},
		rowPool: cache.NewBytesPool(0),
	}
}

func senderKey(hdr *colorlight4go.EtherHeader) string {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	buff.WriteString(hdr.SrcHost.String())
	buff.WriteString(" -> ")
	buff.WriteString(hdr.DstHost.String())

	return buff.String()
}

// Serve answers frames on tr until ctx is done or tr closes. Receive
// timeouts are idle polls, any other receive error is skipped the same way
// a real card ignores traffic it cannot read.
func (card *Card) Serve(ctx context.Context, tr colorlight4go.Transport) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := tr.Recv()
		if err != nil {
			if origin_errors.Is(err, ErrClosed) {
				return nil
			}

			continue
		}

		var hdr colorlight4go.EtherHeader
		if hdr.Unpack(frame) != nil {
			continue
		}

		card.countSender(&hdr)

		data := frame[colorlight4go.EtherHeaderSize:]

		switch hdr.Type {
		case colorlight4go.EtherDetectRequest:
			if len(data) > 2 && data[2] == 1 {
				card.setAcked()
				continue
			}

			if err := tr.Send(colorlight4go.BuildDetectResponse(card.Info)); err != nil {
				return errors.Wrap(err, "send detect response")
			}
		case colorlight4go.EtherDisplayFrame:
			card.recordDisplay(data)
		case colorlight4go.EtherPixelRowLow, colorlight4go.EtherPixelRowHigh:
			card.recordRow(hdr.Type, data)
		default:
			log.Debug().Stringer("type", hdr.Type).Msg("emulator ignoring frame")
		}
	}
}

func (card *Card) countSender(hdr *colorlight4go.EtherHeader) {
	key := senderKey(hdr)

	card.mu.Lock()
	defer card.mu.Unlock()

	card.senders[key]++
}

func (card *Card) setAcked() {
	card.mu.Lock()
	defer card.mu.Unlock()

	card.acked = true
}

func (card *Card) recordDisplay(data []byte) {
	if len(data) < 27 {
		return
	}

	buff := cache.NewBuffer(data)
	buff.Skip(21)

	var state DisplayState

	state.Brightness = buff.ReadUint8()

	buff.Skip(2) // constant marker 5, then one reserved byte

	state.ScaleR = buff.ReadUint8()
	state.ScaleG = buff.ReadUint8()
	state.ScaleB = buff.ReadUint8()

	card.mu.Lock()
	defer card.mu.Unlock()

	card.display = &state
}

func (card *Card) recordRow(etherType colorlight4go.EtherType, data []byte) {
	if len(data) < colorlight4go.RowHeaderLen {
		return
	}

	buff := cache.NewBuffer(data)

	row := uint16(buff.ReadUint8())
	if etherType == colorlight4go.EtherPixelRowHigh {
		// the band restores what the payload byte cannot carry
		row += 256
	}

	buff.Skip(2) // pixel start offset, always zero
	buff.Skip(2) // pixel count, implied by the data length
	buff.Skip(2) // marker bytes

	card.mu.Lock()
	defer card.mu.Unlock()

	if retired, exist := card.rows[row]; exist {
		card.rowPool.PutSlice(retired)
	}

	card.rows[row] = card.copyRow(buff.Bytes())
}

// copyRow stores pixel data in a pooled slice so repeated repaints of the
// same row do not churn allocations.
func (card *Card) copyRow(data []byte) []byte {
	if len(data) > card.rowPool.Size() {
		return append([]byte(nil), data...)
	}

	buff := card.rowPool.GetSlice()[:len(data)]
	copy(buff, data)

	return buff
}

// Acked reports whether the detect ack arrived.
func (card *Card) Acked() bool {
	card.mu.Lock()
	defer card.mu.Unlock()

	return card.acked
}

// Display returns the last display frame state, if any arrived.
func (card *Card) Display() (DisplayState, bool) {
	card.mu.Lock()
	defer card.mu.Unlock()

	if card.display == nil {
		return DisplayState{}, false
	}

	return *card.display, true
}

// Row returns a copy of the last pixel payload stored for row, nil if the
// row was never painted.
func (card *Card) Row(row uint16) []byte {
	card.mu.Lock()
	defer card.mu.Unlock()

	data, exist := card.rows[row]
	if !exist {
		return nil
	}

	return append([]byte(nil), data...)
}

// RowCount number of distinct rows painted so far.
func (card *Card) RowCount() int {
	card.mu.Lock()
	defer card.mu.Unlock()

	return len(card.rows)
}

// Senders returns frame counts keyed by "src -> dst" mac pair.
func (card *Card) Senders() map[string]int {
	card.mu.Lock()
	defer card.mu.Unlock()

	result := make(map[string]int, len(card.senders))
	for key, count := range card.senders {
		result[key] = count
	}

	return result
}
