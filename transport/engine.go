package transport

import (
	"fmt"

	"github.com/pion/interceptor"
	pionSDP "github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"

	"github.com/CantorAI/streamrelay/relay"
)

// The payload types registered here must match what the relay stamps into
// outgoing packets, since the browser maps payload type to codec from the SDP.
const (
	payloadTypeAV1  = webrtc.PayloadType(relay.PayloadTypeAV1)
	payloadTypeH265 = webrtc.PayloadType(relay.PayloadTypeH265)
	payloadTypeH264 = webrtc.PayloadType(relay.PayloadTypeH264)
	payloadTypeOpus = webrtc.PayloadType(relay.PayloadTypeOpus)
)

func mimeTypeFor(codec string) string {
	switch codec {
	case "h265", "H265":
		return webrtc.MimeTypeH265
	case "av1", "AV1":
		return webrtc.MimeTypeAV1
	case "opus", "OPUS":
		return webrtc.MimeTypeOpus
	default:
		return webrtc.MimeTypeH264
	}
}

var videoFeedback = []webrtc.RTCPFeedback{
	{Type: "transport-cc", Parameter: ""},
	{Type: "ccm", Parameter: "fir"},
	{Type: "nack", Parameter: ""},
	{Type: "nack", Parameter: "pli"},
}

// newAPI builds a pion API with one codec registration per mime type used by
// the channel table, default interceptors, and the transport-cc extension.
func newAPI(channels []ChannelSpec) (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	registered := map[string]bool{}
	for _, ch := range channels {
		if ch.Kind == relay.KindData {
			continue
		}
		mime := mimeTypeFor(ch.Codec)
		if registered[mime] {
			continue
		}
		registered[mime] = true
		if err := registerCodec(m, mime); err != nil {
			return nil, err
		}
	}

	if err := m.RegisterHeaderExtension(
		webrtc.RTPHeaderExtensionCapability{URI: pionSDP.TransportCCURI},
		webrtc.RTPCodecTypeVideo,
	); err != nil {
		return nil, err
	}
	i := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, err
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(i)), nil
}

func registerCodec(m *webrtc.MediaEngine, mime string) error {
	switch mime {
	case webrtc.MimeTypeH264:
		// High Profile Level 5.1, packetization-mode=1 (non-interleaved).
		return m.RegisterCodec(webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{
				MimeType:     webrtc.MimeTypeH264,
				ClockRate:    90000,
				SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=640033",
				RTCPFeedback: videoFeedback,
			},
			PayloadType: payloadTypeH264,
		}, webrtc.RTPCodecTypeVideo)
	case webrtc.MimeTypeH265:
		return m.RegisterCodec(webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{
				MimeType:     webrtc.MimeTypeH265,
				ClockRate:    90000,
				SDPFmtpLine:  "profile-id=1;tier-flag=0;level-id=153",
				RTCPFeedback: videoFeedback,
			},
			PayloadType: payloadTypeH265,
		}, webrtc.RTPCodecTypeVideo)
	case webrtc.MimeTypeAV1:
		// profile=0 (Main), level-idx=13 (Level 5.1), tier=0 (Main Tier).
		return m.RegisterCodec(webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{
				MimeType:     webrtc.MimeTypeAV1,
				ClockRate:    90000,
				SDPFmtpLine:  "profile=0;level-idx=13;tier=0",
				RTCPFeedback: videoFeedback,
			},
			PayloadType: payloadTypeAV1,
		}, webrtc.RTPCodecTypeVideo)
	case webrtc.MimeTypeOpus:
		return m.RegisterCodec(webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{
				MimeType:    webrtc.MimeTypeOpus,
				ClockRate:   48000,
				Channels:    2,
				SDPFmtpLine: "minptime=10;maxptime=20;useinbandfec=1;stereo=1;sprop-stereo=1",
			},
			PayloadType: payloadTypeOpus,
		}, webrtc.RTPCodecTypeAudio)
	}
	return fmt.Errorf("transport: unsupported MIME type %s", mime)
}
