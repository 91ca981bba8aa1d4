package webservice

import (
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/CantorAI/streamrelay/transport"
)

type signalMessage struct {
	Type      string `json:"type"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`
	Error     string `json:"error,omitempty"`
}

type session struct {
	id   string
	conn *websocket.Conn
	peer *transport.Peer

	writeMu sync.Mutex
}

func (sess *session) writeJSON(v any) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	return sess.conn.WriteJSON(v)
}

func (s *Service) handleSignalWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("signal upgrade:", err)
		return
	}

	sess := &session{id: uuid.New().String(), conn: conn}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	log.Println("signal session open:", sess.id)

	defer func() {
		if sess.peer != nil {
			sess.peer.Close()
		}
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
		conn.Close()
		log.Println("signal session closed:", sess.id)
	}()

	for {
		var msg signalMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("signal read:", err)
			}
			return
		}
		if err := s.handleSignal(sess, msg); err != nil {
			log.Printf("signal %s: %v", msg.Type, err)
			sess.writeJSON(signalMessage{Type: "error", Error: err.Error()})
		}
	}
}

func (s *Service) handleSignal(sess *session, msg signalMessage) error {
	switch msg.Type {
	case "offer":
		if sess.peer == nil {
			peer, err := s.newPeer(sess)
			if err != nil {
				return err
			}
			sess.peer = peer
		}
		_, err := sess.peer.HandleOffer(msg.SDP)
		return err
	case "candidate":
		if sess.peer == nil {
			return nil
		}
		return sess.peer.HandleCandidate(msg.Candidate)
	default:
		log.Println("signal: unknown message type:", msg.Type)
		return nil
	}
}

func (s *Service) newPeer(sess *session) (*transport.Peer, error) {
	peer, err := transport.NewPeer(s.channels, transport.Config{
		ICEServers:        s.iceServers,
		OnKeyframeRequest: s.requestKeyframe,
	})
	if err != nil {
		return nil, err
	}
	peer.OnSignal(
		func(sdpType, sdp string) {
			if err := sess.writeJSON(signalMessage{Type: sdpType, SDP: sdp}); err != nil {
				log.Println("signal write:", err)
			}
		},
		func(candidate string) {
			if err := sess.writeJSON(signalMessage{Type: "candidate", Candidate: candidate}); err != nil {
				log.Println("signal write:", err)
			}
		},
	)
	peer.OnClosed(func() {
		s.relay.RemoveClient(peer)
	})
	s.relay.AddClient(peer, peer.Sinks())
	return peer, nil
}
