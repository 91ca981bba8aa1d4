package transport

import (
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
)

// pliCooldown rate-limits keyframe requests per sender; browsers re-send PLI
// aggressively while waiting for the refresh to arrive.
const pliCooldown = 2 * time.Second

// handleRTCP drains the sender's RTCP stream and forwards Picture Loss
// Indications as keyframe requests. The read loop also keeps pion's
// interceptors fed; it exits when the sender closes.
func handleRTCP(sender *webrtc.RTPSender, channelID string, onKeyframeRequest func(string)) {
	rtcpBuf := make([]byte, 1500)
	lastPLI := time.Time{}
	for {
		n, _, err := sender.Read(rtcpBuf)
		if err != nil {
			return
		}
		if onKeyframeRequest == nil {
			continue
		}
		packets, err := rtcp.Unmarshal(rtcpBuf[:n])
		if err != nil {
			continue
		}
		for _, p := range packets {
			if _, ok := p.(*rtcp.PictureLossIndication); !ok {
				continue
			}
			now := time.Now()
			if now.Sub(lastPLI) < pliCooldown {
				continue
			}
			lastPLI = now
			onKeyframeRequest(channelID)
		}
	}
}
