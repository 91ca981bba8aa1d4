package relay

import (
	"bytes"
	"testing"
)

func TestH264Classification(t *testing.T) {
	c := &paramCache{}

	sps := []byte{nalSPS, 0xAA}
	pps := []byte{nalPPS, 0xBB}
	if c.observe("h264", sps) {
		t.Error("SPS must not classify as a sync unit")
	}
	if c.observe("h264", pps) {
		t.Error("PPS must not classify as a sync unit")
	}
	if c.syncSeen {
		t.Error("syncSeen must stay false until an IDR arrives")
	}
	if !c.observe("h264", []byte{nalIDR, 0x01}) {
		t.Error("IDR must classify as a sync unit")
	}
	if !c.syncSeen {
		t.Error("syncSeen must latch after an IDR")
	}

	sets := c.parameterSets()
	if len(sets) != 2 {
		t.Fatalf("Expected SPS+PPS cached, got %d units", len(sets))
	}
	if !bytes.Equal(sets[0], sps) || !bytes.Equal(sets[1], pps) {
		t.Error("Parameter sets must come back in SPS, PPS order")
	}
}

func TestH265Classification(t *testing.T) {
	c := &paramCache{}

	vps := []byte{32 << 1, 0x01}
	sps := []byte{33 << 1, 0x01}
	pps := []byte{34 << 1, 0x01}
	c.observe("h265", vps)
	c.observe("h265", sps)
	c.observe("h265", pps)
	if !c.observe("h265", []byte{19 << 1, 0x01}) {
		t.Error("IDR_W_RADL must classify as a sync unit")
	}

	sets := c.parameterSets()
	if len(sets) != 3 {
		t.Fatalf("Expected VPS+SPS+PPS cached, got %d units", len(sets))
	}
	if !bytes.Equal(sets[0], vps) {
		t.Error("VPS must come first for H.265")
	}
}

func TestSyncObservedNeverReverts(t *testing.T) {
	c := &paramCache{}
	c.observe("h264", []byte{nalIDR, 0x01})
	c.observe("h264", []byte{nalP, 0x02})
	c.observe("h264", []byte{nalSPS, 0x03})
	if !c.syncSeen {
		t.Error("syncSeen must never revert to false")
	}
}

func TestParameterSetOverwrite(t *testing.T) {
	c := &paramCache{}
	c.observe("h264", []byte{nalPPS, 0x01})
	c.observe("h264", []byte{nalPPS, 0x02})
	sets := c.parameterSets()
	if len(sets) != 1 {
		t.Fatalf("Expected single PPS entry, got %d", len(sets))
	}
	if sets[0][1] != 0x02 {
		t.Error("Newer PPS must overwrite the cached one")
	}
}

func TestClassificationSkipsStartCode(t *testing.T) {
	c := &paramCache{}
	c.observe("h264", append([]byte{0, 0, 0, 1}, nalSPS, 0x42))
	if len(c.sps) == 0 {
		t.Error("Annex-B 4-byte start code must be skipped before classification")
	}
	c2 := &paramCache{}
	if !c2.observe("h264", append([]byte{0, 0, 1}, nalIDR, 0x42)) {
		t.Error("Annex-B 3-byte start code must be skipped before classification")
	}
}

func TestObserveEmptyPayload(t *testing.T) {
	c := &paramCache{}
	if c.observe("h264", nil) {
		t.Error("Empty payload must not classify")
	}
	if c.observe("h264", []byte{0, 0, 0, 1}) {
		t.Error("Bare start code must not classify")
	}
}
