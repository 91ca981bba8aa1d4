package webservice

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func encodeIngestFrame(channelID string, keyframe bool, timestampUs uint64, payload []byte) []byte {
	buf := make([]byte, 0, 1+len(channelID)+1+8+len(payload))
	buf = append(buf, byte(len(channelID)))
	buf = append(buf, channelID...)
	var flags byte
	if keyframe {
		flags |= ingestFlagKeyframe
	}
	buf = append(buf, flags)
	buf = binary.BigEndian.AppendUint64(buf, timestampUs)
	return append(buf, payload...)
}

func TestParseIngestFrame(t *testing.T) {
	payload := []byte{0x65, 0x88, 0x80, 0x10}
	raw := encodeIngestFrame("video_main", true, 123456789, payload)

	frame, err := parseIngestFrame(raw)
	if err != nil {
		t.Fatal(err)
	}
	if frame.channelID != "video_main" {
		t.Errorf("channel id = %q", frame.channelID)
	}
	if !frame.keyframe {
		t.Error("keyframe flag not set")
	}
	if frame.timestampUs != 123456789 {
		t.Errorf("timestamp = %d", frame.timestampUs)
	}
	if !bytes.Equal(frame.payload, payload) {
		t.Errorf("payload = %x", frame.payload)
	}
}

func TestParseIngestFrameNoFlags(t *testing.T) {
	raw := encodeIngestFrame("events", false, 0, []byte("hello"))
	frame, err := parseIngestFrame(raw)
	if err != nil {
		t.Fatal(err)
	}
	if frame.keyframe {
		t.Error("keyframe flag set")
	}
	if string(frame.payload) != "hello" {
		t.Errorf("payload = %q", frame.payload)
	}
}

func TestParseIngestFrameEmptyPayload(t *testing.T) {
	raw := encodeIngestFrame("audio_main", false, 42, nil)
	frame, err := parseIngestFrame(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(frame.payload) != 0 {
		t.Errorf("payload = %x", frame.payload)
	}
}

func TestParseIngestFrameTruncated(t *testing.T) {
	raw := encodeIngestFrame("video_main", true, 1, []byte{0x01})
	headerLen := 1 + len("video_main") + 1 + 8
	for cut := 0; cut < headerLen; cut++ {
		if _, err := parseIngestFrame(raw[:cut]); err == nil {
			t.Errorf("no error for %d-byte frame", cut)
		}
	}
}

func TestParseIngestFrameEmptyChannelID(t *testing.T) {
	raw := encodeIngestFrame("", false, 1, []byte{0x01})
	if _, err := parseIngestFrame(raw); err == nil {
		t.Error("no error for empty channel id")
	}
}
