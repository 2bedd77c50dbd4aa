package colorlight4go

import (
	"github.com/pkg/errors"
)

// MaxDetectAttempts bounds the detect response polling loop. Every Recv
// call on the transport consumes one attempt, whether it yields a matching
// frame, an unrelated one or an error. The transport's own read timeout
// bounds the blocking time of each attempt.
const MaxDetectAttempts = 100

// detectSession runs the request -> response -> acknowledge handshake
// exactly once. State lives only for the duration of one run.
type detectSession struct {
	tr Transport
}

func (session *detectSession) run() (ReceiverCardInfo, error) {
	if err := session.tr.Send(BuildDetectRequest()); err != nil {
		return ReceiverCardInfo{}, errors.Wrap(err, "send detect request")
	}

	var (
		info    ReceiverCardInfo
		matched bool
	)

	for attempt := 0; attempt < MaxDetectAttempts && !matched; attempt++ {
		frame, err := session.tr.Recv()
		if err != nil {
			// transient receive errors burn one attempt, they never abort
			// the poll
			continue
		}

		if len(frame) < EtherHeaderSize {
			continue
		}

		var hdr EtherHeader
		if err := hdr.Unpack(frame); err != nil {
			continue
		}

		if hdr.Type != EtherDetectResponse {
			continue
		}

		// first response wins, multiple replying cards are not
		// disambiguated
		info = ParseDetectResponse(frame[EtherHeaderSize:])
		matched = true
	}

	if !matched {
		return ReceiverCardInfo{}, errors.WithStack(ErrDetectTimeout)
	}

	// the handshake is all or nothing: a failed ack fails the whole detect
	// even though a response was already parsed
	if err := session.tr.Send(BuildDetectAck()); err != nil {
		return ReceiverCardInfo{}, errors.Wrap(err, "send detect ack")
	}

	return info, nil
}
