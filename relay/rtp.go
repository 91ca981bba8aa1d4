package relay

import (
	"crypto/rand"
	"encoding/binary"
)

// Negotiated RTP payload type per codec. These mirror the numbers the
// transport layer registers in its media engine, and are the values the
// fan-out stamps into outgoing packets.
const (
	PayloadTypeAV1  uint8 = 100
	PayloadTypeH265 uint8 = 102
	PayloadTypeH264 uint8 = 104
	PayloadTypeOpus uint8 = 111
)

func payloadTypeFor(codec string) uint8 {
	switch codec {
	case "av1", "AV1":
		return PayloadTypeAV1
	case "h265", "H265":
		return PayloadTypeH265
	case "opus", "OPUS":
		return PayloadTypeOpus
	default:
		return PayloadTypeH264
	}
}

// rtpFixedHeaderSize is the RTP header without CSRCs or extensions.
const rtpFixedHeaderSize = 12

// rewriteRTPHeader stamps the channel's negotiated payload type and SSRC into
// an RTP packet in place, preserving the marker bit. Sequence numbers and
// timestamps are left alone; they belong to the transport. Returns false and
// leaves pkt untouched when it is too short to carry a fixed header.
func rewriteRTPHeader(pkt []byte, payloadType uint8, ssrc uint32) bool {
	if len(pkt) < rtpFixedHeaderSize {
		return false
	}
	pkt[1] = pkt[1]&0x80 | payloadType&0x7F
	binary.BigEndian.PutUint32(pkt[8:12], ssrc)
	return true
}

// newSSRC draws a fixed per-channel synchronization source id.
func newSSRC() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0x52454C59 // stable fallback
	}
	return binary.BigEndian.Uint32(b[:])
}
