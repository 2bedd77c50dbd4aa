// Package pcap binds the card protocol to a live network interface through
// gopacket's libpcap handle.
package pcap

import (
	"net"
	"time"

	origin_errors "errors"

	"github.com/google/gopacket/layers"
	libpcap "github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/asamonik/colorlight4go"
)

const defaultSnapLen = 65535

// ReadTimeout bounds one Recv call and with it one detect polling attempt.
var ReadTimeout = 50 * time.Millisecond

var (
	// ErrInterfaceNotFound no local capture device matches the requested
	// source name or IP
	ErrInterfaceNotFound = origin_errors.New("capture interface not found")
	// ErrNotEthernet the resolved device is not an ethernet link, the card
	// protocol runs on nothing else
	ErrNotEthernet = origin_errors.New("not an ethernet link")
)

// Handle is a raw ethernet channel on one interface, implementing
// colorlight4go.Transport. Opening requires capture privileges
// (CAP_NET_RAW on linux).
type Handle struct {
	device string
	handle *libpcap.Handle
}

var _ colorlight4go.Transport = (*Handle)(nil)

// Open binds source, an interface name or an IP address assigned to one,
// in promiscuous mode with ReadTimeout as the per read block time.
func Open(source string) (*Handle, error) {
	device, err := resolveDevice(source)
	if err != nil {
		return nil, err
	}

	handle, err := libpcap.OpenLive(device, defaultSnapLen, true, ReadTimeout)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if handle.LinkType() != layers.LinkTypeEthernet {
		handle.Close()
		return nil, errors.Wrap(ErrNotEthernet, device)
	}

	log.Debug().
		Str("source", source).
		Str("device", device).
		Msg("raw ethernet channel opened")

	return &Handle{device: device, handle: handle}, nil
}

// OpenCard opens source and binds a Card to it.
func OpenCard(source string) (*colorlight4go.Card, error) {
	handle, err := Open(source)
	if err != nil {
		return nil, err
	}

	return colorlight4go.NewCard(handle), nil
}

func resolveDevice(source string) (string, error) {
	devices, err := libpcap.FindAllDevs()
	if err != nil {
		return "", errors.WithStack(err)
	}

	ip := net.ParseIP(source)

	for _, device := range devices {
		if device.Name == source {
			return device.Name, nil
		}

		if ip == nil {
			continue
		}

		for _, addr := range device.Addresses {
			if addr.IP.Equal(ip) {
				return device.Name, nil
			}
		}
	}

	return "", errors.Wrap(ErrInterfaceNotFound, source)
}

func (h *Handle) Device() string {
	return h.device
}

// FilterResponses restricts inbound frames to detect responses. Optional,
// the detect loop filters by ethertype either way, but on busy interfaces
// this keeps unrelated traffic from burning polling attempts.
func (h *Handle) FilterResponses() error {
	return errors.WithStack(h.handle.SetBPFFilter("ether proto 0x0805"))
}

func (h *Handle) Send(frame []byte) error {
	return errors.WithStack(h.handle.WritePacketData(frame))
}

// Recv returns the next frame seen on the interface, any ethertype. A quiet
// interface yields pcap's timeout error once ReadTimeout elapses.
func (h *Handle) Recv() ([]byte, error) {
	data, _, err := h.handle.ReadPacketData()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

func (h *Handle) Close() error {
	h.handle.Close()
	return nil
}
