// Package colorlight4go drives Colorlight 5A-75 family LED receiver cards
// over their raw layer-2 control protocol: detect handshake, display
// parameters and row based BGR pixel data, all as plain ethernet frames
// distinguished by custom ethertype values.
package colorlight4go

import (
	"encoding/binary"
	"fmt"

	origin_errors "errors"
)

var (
	EtherHeaderSize = binary.Size(EtherHeader{})

	ErrInsufficientData = origin_errors.New("insufficient data length")

	// ErrDetectTimeout detect polling exhausted MaxDetectAttempts without a
	// response frame. The caller may start a fresh Detect from the top.
	ErrDetectTimeout = origin_errors.New("no detect response from receiver card")
)

// MACAddr ethernet mac address
type MACAddr [6]byte

func (addr MACAddr) String() string {
	return fmt.Sprintf(
		"%x:%x:%x:%x:%x:%x",
		addr[0], addr[1], addr[2],
		addr[3], addr[4], addr[5],
	)
}

// Fixed addressing identities of the protocol. Every frame the controller
// transmits carries CardMAC as destination and ControllerMAC as source, the
// card does not answer to anything else.
var (
	CardMAC       = MACAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	ControllerMAC = MACAddr{0x22, 0x22, 0x33, 0x44, 0x55, 0x66}
	BroadcastMAC  = MACAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// EtherType frame kind discriminator at frame offset 12, big-endian
type EtherType uint16

const (
	// EtherDetectRequest opens the detect handshake
	EtherDetectRequest EtherType = 0x0700
	// EtherDetectAck closes the detect handshake, same ethertype as the
	// request with payload byte 2 set to 1
	EtherDetectAck EtherType = 0x0700
	// EtherDetectResponse broadcast reply carrying firmware version and
	// panel geometry
	EtherDetectResponse EtherType = 0x0805
	// EtherDisplayFrame latches pixel rows and sets brightness / color scale
	EtherDisplayFrame EtherType = 0x0107
	// EtherBrightnessBase reserved by the card firmware, never transmitted
	EtherBrightnessBase EtherType = 0x0a00
	// EtherPixelRowLow pixel row frame, row index < 256
	EtherPixelRowLow EtherType = 0x5500
	// EtherPixelRowHigh pixel row frame, row index >= 256. The payload still
	// carries only the low byte of the row index, the band is the ethertype.
	EtherPixelRowHigh EtherType = 0x5501
)

func (t EtherType) String() string {
	switch t {
	case EtherDetectRequest:
		return "detect request/ack"
	case EtherDetectResponse:
		return "detect response"
	case EtherDisplayFrame:
		return "display frame"
	case EtherPixelRowLow:
		return "pixel row"
	case EtherPixelRowHigh:
		return "pixel row high"
	default:
		return fmt.Sprintf("ethertype 0x%04x", uint16(t))
	}
}

// EtherHeader ethernet header
type EtherHeader struct {
	// Destination host address
	DstHost MACAddr
	// Source host address
	SrcHost MACAddr
	// Frame kind
	Type EtherType
}

func (hdr *EtherHeader) Pack(buff []byte) error {
	if len(buff) < EtherHeaderSize {
		return ErrInsufficientData
	}

	offset := 0

	offset += copy(buff[offset:], hdr.DstHost[:])
	offset += copy(buff[offset:], hdr.SrcHost[:])

	binary.BigEndian.PutUint16(buff[offset:], uint16(hdr.Type))

	return nil
}

func (hdr *EtherHeader) Unpack(buff []byte) error {
	if len(buff) < EtherHeaderSize {
		return ErrInsufficientData
	}

	offset := 0

	offset += copy(hdr.DstHost[:], buff[offset:])
	offset += copy(hdr.SrcHost[:], buff[offset:])

	hdr.Type = EtherType(binary.BigEndian.Uint16(buff[offset:]))

	return nil
}

// ReceiverCardInfo firmware version and panel geometry reported by a
// receiver card in its detect response. Immutable once parsed.
type ReceiverCardInfo struct {
	VersionMajor uint8
	VersionMinor uint8
	PixelColumns uint16
	PixelRows    uint16
}

// IsZero reports whether info carries no data at all. ParseDetectResponse
// returns the zero value for responses shorter than its 24 byte minimum, so
// an all-zero result means "insufficient data", not a 0x0 panel.
func (info ReceiverCardInfo) IsZero() bool {
	return info == ReceiverCardInfo{}
}

func (info ReceiverCardInfo) String() string {
	return fmt.Sprintf(
		"receiver card v%d.%d, %dx%d",
		info.VersionMajor, info.VersionMinor,
		info.PixelColumns, info.PixelRows,
	)
}
