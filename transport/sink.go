package transport

import (
	"github.com/pion/webrtc/v4"
)

// trackSink adapts a local RTP track to relay.Sink. The relay hands it fully
// formed RTP bytes (payload type and SSRC already stamped); pion parses and
// forwards them. Open tracks the peer connection state: before the session is
// connected writes would only be dropped on the floor.
type trackSink struct {
	track *webrtc.TrackLocalStaticRTP
	peer  *Peer
}

func (s *trackSink) IsOpen() bool {
	return s.peer.connected.Load()
}

func (s *trackSink) Send(p []byte) error {
	_, err := s.track.Write(p)
	return err
}

// dataSink adapts a pion data channel to relay.Sink. Open reflects the
// channel's own ready state, which stays false until the SCTP handshake
// completes; that is what makes the relay's "deliver when a receiver becomes
// ready" retention work for data messages.
type dataSink struct {
	dc *webrtc.DataChannel
}

func (s *dataSink) IsOpen() bool {
	return s.dc.ReadyState() == webrtc.DataChannelStateOpen
}

func (s *dataSink) Send(p []byte) error {
	return s.dc.Send(p)
}
