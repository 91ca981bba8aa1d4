// Package transport owns the WebRTC session layer: peer connections,
// offer/answer and ICE candidate exchange, and the per-channel send sinks
// the relay fans out to. The relay never imports pion; everything it needs
// from a receiver goes through the relay.Sink interface.
package transport

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"

	"github.com/CantorAI/streamrelay/relay"
)

// ChannelSpec describes one relay channel the peer must expose: a sendonly
// track for media kinds, a data channel otherwise.
type ChannelSpec struct {
	ID    string
	Kind  relay.Kind
	Codec string
}

// Config carries session-level knobs shared by every peer.
type Config struct {
	ICEServers []string
	// OnKeyframeRequest is invoked (rate-limited) when a receiver asks for a
	// picture refresh via RTCP PLI, so the producer can force an IDR.
	OnKeyframeRequest func(channelID string)
}

// Peer is one connected receiver's session. Create it, wire the signal
// handlers, feed it the remote offer and candidates, and hand Sinks() to
// relay.AddClient.
type Peer struct {
	pc        *webrtc.PeerConnection
	sinks     map[string]relay.Sink
	connected atomic.Bool

	onDescription func(sdpType, sdp string)
	onCandidate   func(candidate string)
	onClosed      func()
	closeOnce     sync.Once
}

// NewPeer builds a peer connection exposing every channel in the table.
func NewPeer(channels []ChannelSpec, cfg Config) (*Peer, error) {
	api, err := newAPI(channels)
	if err != nil {
		return nil, err
	}

	var iceServers []webrtc.ICEServer
	for _, u := range cfg.ICEServers {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: []string{u}})
	}
	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("transport: create peer connection: %w", err)
	}

	p := &Peer{
		pc:    pc,
		sinks: make(map[string]relay.Sink, len(channels)),
	}

	for _, ch := range channels {
		switch ch.Kind {
		case relay.KindData:
			dc, err := pc.CreateDataChannel(ch.ID, nil)
			if err != nil {
				_ = pc.Close()
				return nil, fmt.Errorf("transport: data channel %s: %w", ch.ID, err)
			}
			p.sinks[ch.ID] = &dataSink{dc: dc}
		default:
			track, err := webrtc.NewTrackLocalStaticRTP(
				webrtc.RTPCodecCapability{MimeType: mimeTypeFor(ch.Codec)},
				ch.ID, "streamrelay",
			)
			if err != nil {
				_ = pc.Close()
				return nil, fmt.Errorf("transport: track %s: %w", ch.ID, err)
			}
			sender, err := pc.AddTrack(track)
			if err != nil {
				_ = pc.Close()
				return nil, fmt.Errorf("transport: add track %s: %w", ch.ID, err)
			}
			if ch.Kind == relay.KindVideo {
				go handleRTCP(sender, ch.ID, cfg.OnKeyframeRequest)
			}
			p.sinks[ch.ID] = &trackSink{track: track, peer: p}
		}
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || p.onCandidate == nil {
			return
		}
		p.onCandidate(c.ToJSON().Candidate)
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Printf("transport: connection state: %s", s)
		switch s {
		case webrtc.PeerConnectionStateConnected:
			p.connected.Store(true)
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed,
			webrtc.PeerConnectionStateDisconnected:
			p.connected.Store(false)
			p.fireClosed()
		}
	})

	return p, nil
}

// OnSignal wires the two outbound notifications: the local description
// produced when answering, and each local ICE candidate as it is gathered.
func (p *Peer) OnSignal(onDescription func(sdpType, sdp string), onCandidate func(candidate string)) {
	p.onDescription = onDescription
	p.onCandidate = onCandidate
}

// OnClosed registers the session-end callback; it fires at most once.
func (p *Peer) OnClosed(fn func()) {
	p.onClosed = fn
}

// Sinks returns the sinks-by-channel map for relay.AddClient.
func (p *Peer) Sinks() map[string]relay.Sink {
	return p.sinks
}

// HandleOffer applies the remote offer and answers it. The answer is also
// delivered through the description event; ICE candidates trickle separately.
func (p *Peer) HandleOffer(offerSDP string) (string, error) {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return "", fmt.Errorf("transport: set remote description: %w", err)
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("transport: create answer: %w", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return "", fmt.Errorf("transport: set local description: %w", err)
	}
	sdp := p.pc.LocalDescription().SDP
	if p.onDescription != nil {
		p.onDescription("answer", sdp)
	}
	return sdp, nil
}

// HandleCandidate adds a remote ICE candidate.
func (p *Peer) HandleCandidate(candidate string) error {
	return p.pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: candidate})
}

// Close tears the session down. Safe to call more than once, and safe to
// call on a session that never finished opening.
func (p *Peer) Close() {
	p.fireClosed()
	_ = p.pc.Close()
}

func (p *Peer) fireClosed() {
	p.closeOnce.Do(func() {
		if p.onClosed != nil {
			p.onClosed()
		}
	})
}
