package colorlight4go

// Frame lengths fixed by the receiver hardware. The card accepts no
// variance in any offset or marker byte below.
const (
	// DetectFrameLen total length of detect request, ack and response frames
	DetectFrameLen = 284
	// DisplayFrameLen total length of a display frame
	DisplayFrameLen = 112
	// RowHeaderLen payload bytes preceding pixel data in a row frame
	RowHeaderLen = 7

	// CardFamilyMarker first payload byte of a detect response, "5A" family
	CardFamilyMarker = 0x5a

	detectRespMinLen = 24
)

func putEtherHeader(frame []byte, etherType EtherType) {
	offset := copy(frame, CardMAC[:])
	offset += copy(frame[offset:], ControllerMAC[:])

	H2NShort(frame, uint16(etherType), &offset)
}

// BuildDetectRequest builds the 284 byte discovery frame asking the
// receiver card to report its firmware version and panel geometry.
func BuildDetectRequest() []byte {
	frame := make([]byte, DetectFrameLen)

	putEtherHeader(frame, EtherDetectRequest)

	return frame
}

// BuildDetectAck builds the handshake acknowledge: identical to the detect
// request except payload byte 2 is set to 1.
func BuildDetectAck() []byte {
	frame := make([]byte, DetectFrameLen)

	putEtherHeader(frame, EtherDetectAck)

	frame[EtherHeaderSize+2] = 1

	return frame
}

// BuildDisplayFrame builds the 112 byte frame that latches previously sent
// pixel rows and applies global brightness (0xff = 100%) and per channel
// color scaling.
func BuildDisplayFrame(brightness, r, g, b byte) []byte {
	frame := make([]byte, DisplayFrameLen)

	putEtherHeader(frame, EtherDisplayFrame)

	data := frame[EtherHeaderSize:]
	data[21] = brightness
	data[22] = 5
	data[24] = r
	data[25] = g
	data[26] = b

	return frame
}

// BuildPixelRowFrame builds one row of BGR pixel data. bgr must be a
// multiple of 3 bytes long: the encoded pixel count is len(bgr)/3 rounded
// down while the buffer is copied verbatim, remainder bytes included.
func BuildPixelRowFrame(row uint16, bgr []byte) []byte {
	return AppendPixelRowFrame(
		make([]byte, 0, EtherHeaderSize+RowHeaderLen+len(bgr)),
		row, bgr,
	)
}

// AppendPixelRowFrame appends a pixel row frame to dst and returns the
// extended slice. Allocation free when dst has capacity, for streaming hot
// paths; BuildPixelRowFrame is the allocating equivalent.
func AppendPixelRowFrame(dst []byte, row uint16, bgr []byte) []byte {
	etherType := EtherPixelRowLow
	if row >= 256 {
		etherType = EtherPixelRowHigh
	}

	dst = append(dst, CardMAC[:]...)
	dst = append(dst, ControllerMAC[:]...)
	dst = append(dst, byte(etherType>>8), byte(etherType))

	pixels := uint16(len(bgr) / 3)

	dst = append(dst,
		byte(row), // high byte travels in the ethertype band only
		0x00, 0x00, // pixel start offset, partial rows are never addressed
		byte(pixels>>8), byte(pixels),
		0x08, 0x88,
	)

	return append(dst, bgr...)
}

// ParseDetectResponse decodes the payload of a detect response frame, the
// 14 byte ethernet header already stripped. Payloads shorter than 24 bytes
// yield the zero ReceiverCardInfo instead of an error, callers distinguish
// that with IsZero. The family marker at payload byte 0 is not validated.
func ParseDetectResponse(payload []byte) ReceiverCardInfo {
	if len(payload) < detectRespMinLen {
		return ReceiverCardInfo{}
	}

	var info ReceiverCardInfo

	offset := 1

	info.VersionMajor = NByte(payload, &offset)
	info.VersionMinor = NByte(payload, &offset)

	offset = 20

	info.PixelColumns = N2HShort(payload, &offset)
	info.PixelRows = N2HShort(payload, &offset)

	return info
}

// BuildDetectResponse builds the broadcast reply a receiver card sends for
// a detect request. The controller never transmits this frame, the emulator
// and tests do.
func BuildDetectResponse(info ReceiverCardInfo) []byte {
	frame := make([]byte, DetectFrameLen)

	offset := copy(frame, BroadcastMAC[:])
	offset += copy(frame[offset:], CardMAC[:])

	H2NShort(frame, uint16(EtherDetectResponse), &offset)

	data := frame[EtherHeaderSize:]
	data[0] = CardFamilyMarker
	data[1] = info.VersionMajor
	data[2] = info.VersionMinor

	offset = 20

	H2NShort(data, info.PixelColumns, &offset)
	H2NShort(data, info.PixelRows, &offset)

	return frame
}
