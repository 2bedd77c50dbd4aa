package colorlight4go

import (
	"github.com/pkg/errors"
)

// Transport is one bound raw ethernet channel. Send transmits a complete
// frame including its 14 byte header. Recv returns the next frame observed
// on the channel, any ethertype including unrelated traffic, and is
// expected to bound its own blocking time. Implementations live in the
// pcap and emulator packages.
type Transport interface {
	Send(frame []byte) error
	Recv() ([]byte, error)
	Close() error
}

// Card drives one Colorlight receiver card over a Transport. A Card is not
// safe for concurrent use, callers impose their own exclusion.
type Card struct {
	tr Transport
}

func NewCard(tr Transport) *Card {
	return &Card{tr: tr}
}

// Detect runs the discovery handshake and reports the card's firmware
// version and panel geometry. Fails with ErrDetectTimeout when no response
// arrives within MaxDetectAttempts receive attempts.
func (card *Card) Detect() (ReceiverCardInfo, error) {
	session := detectSession{tr: card.tr}

	return session.run()
}

// SendDisplayFrame latches previously sent rows and applies brightness and
// color scaling. Fire and forget, the card does not reply.
func (card *Card) SendDisplayFrame(brightness, r, g, b byte) error {
	return errors.Wrap(
		card.tr.Send(BuildDisplayFrame(brightness, r, g, b)),
		"send display frame",
	)
}

// SendRow transmits one horizontal line of BGR pixel data. Fire and forget,
// the card does not reply.
func (card *Card) SendRow(row uint16, bgr []byte) error {
	return errors.Wrapf(
		card.tr.Send(BuildPixelRowFrame(row, bgr)),
		"send pixel row %d", row,
	)
}

func (card *Card) Close() error {
	return card.tr.Close()
}
