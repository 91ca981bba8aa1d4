package relay

import "bytes"

var startCode = []byte{0x00, 0x00, 0x00, 0x01}
var startCode3 = []byte{0x00, 0x00, 0x01}

// paramCache holds the most recent out-of-band codec configuration observed
// on a video channel, so that a receiver joining mid-stream can still decode
// the next IDR. At most one entry per parameter-set type; newer units
// overwrite older ones. Guarded by the owning channel's mutex.
type paramCache struct {
	vps []byte // H.265 only
	sps []byte
	pps []byte

	// syncSeen latches to true on the first IDR and never reverts; it gates
	// all media delivery for the channel.
	syncSeen bool
}

// observe classifies a pushed video payload by its leading NAL unit type,
// caching parameter sets and latching syncSeen. Reports whether the payload
// is a sync (IDR) unit.
func (c *paramCache) observe(codec string, payload []byte) bool {
	nal := stripStartCode(payload)
	if len(nal) == 0 {
		return false
	}

	switch codec {
	case "h265", "H265":
		switch (nal[0] >> 1) & 0x3F {
		case 32: // VPS
			c.vps = append([]byte(nil), payload...)
		case 33: // SPS
			c.sps = append([]byte(nil), payload...)
		case 34: // PPS
			c.pps = append([]byte(nil), payload...)
		case 19, 20, 21: // IDR_W_RADL, IDR_N_LP, CRA_NUT
			c.syncSeen = true
			return true
		}
	default: // H.264 byte stream
		switch nal[0] & 0x1F {
		case 7: // SPS
			c.sps = append([]byte(nil), payload...)
		case 8: // PPS
			c.pps = append([]byte(nil), payload...)
		case 5: // IDR slice
			c.syncSeen = true
			return true
		}
	}
	return false
}

// parameterSets returns the cached units in decode order: VPS (when present),
// SPS, then PPS. Missing entries are simply skipped.
func (c *paramCache) parameterSets() [][]byte {
	var out [][]byte
	if len(c.vps) > 0 {
		out = append(out, c.vps)
	}
	if len(c.sps) > 0 {
		out = append(out, c.sps)
	}
	if len(c.pps) > 0 {
		out = append(out, c.pps)
	}
	return out
}

// stripStartCode skips a leading Annex-B start code if the producer left one
// on the payload, so classification always sees the NAL header byte.
func stripStartCode(payload []byte) []byte {
	if bytes.HasPrefix(payload, startCode) {
		return payload[4:]
	}
	if bytes.HasPrefix(payload, startCode3) {
		return payload[3:]
	}
	return payload
}
