package relay

import (
	"testing"

	"github.com/pion/rtp"
)

func TestRewriteRTPHeader(t *testing.T) {
	pkt := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         true,
			PayloadType:    96,
			SequenceNumber: 4242,
			Timestamp:      90000,
			SSRC:           0xDEADBEEF,
		},
		Payload: []byte{1, 2, 3, 4},
	}
	raw, err := pkt.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !rewriteRTPHeader(raw, PayloadTypeH264, 0xCAFEF00D) {
		t.Fatal("rewrite rejected a full packet")
	}

	var got rtp.Packet
	if err := got.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.Marker {
		t.Error("Marker bit must be preserved")
	}
	if got.PayloadType != PayloadTypeH264 {
		t.Errorf("Expected payload type %d, got %d", PayloadTypeH264, got.PayloadType)
	}
	if got.SSRC != 0xCAFEF00D {
		t.Errorf("Expected SSRC 0xCAFEF00D, got %#x", got.SSRC)
	}
	if got.SequenceNumber != 4242 || got.Timestamp != 90000 {
		t.Error("Sequence number and timestamp must be left alone")
	}
}

func TestRewriteClearedMarker(t *testing.T) {
	pkt := rtp.Packet{Header: rtp.Header{Version: 2, PayloadType: 127, SSRC: 7}, Payload: []byte{0}}
	raw, _ := pkt.Marshal()
	rewriteRTPHeader(raw, PayloadTypeOpus, 1)

	var got rtp.Packet
	if err := got.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Marker {
		t.Error("A cleared marker bit must stay cleared")
	}
	if got.PayloadType != PayloadTypeOpus {
		t.Errorf("Expected payload type %d, got %d", PayloadTypeOpus, got.PayloadType)
	}
}

func TestRewriteShortPacket(t *testing.T) {
	short := make([]byte, rtpFixedHeaderSize-1)
	if rewriteRTPHeader(short, PayloadTypeH264, 1) {
		t.Error("rewrite must reject packets shorter than the fixed header")
	}
}

func TestPayloadTypeTable(t *testing.T) {
	cases := map[string]uint8{
		"h264": PayloadTypeH264,
		"h265": PayloadTypeH265,
		"av1":  PayloadTypeAV1,
		"opus": PayloadTypeOpus,
		"":     PayloadTypeH264,
	}
	for codec, want := range cases {
		if got := payloadTypeFor(codec); got != want {
			t.Errorf("payloadTypeFor(%q): expected %d, got %d", codec, want, got)
		}
	}
}
