package webservice

import (
	"encoding/binary"
	"errors"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Ingest frame layout, big-endian:
//
//	[idLen u8][channelID idLen][flags u8][timestampUs u64][payload...]
//
// flag bit 0 marks the payload as a keyframe.
const (
	ingestFlagKeyframe = 0x01
	ingestHeaderMin    = 1 + 1 + 8
)

type ingestFrame struct {
	channelID   string
	keyframe    bool
	timestampUs uint64
	payload     []byte
}

var errIngestShort = errors.New("webservice: ingest frame too short")

func parseIngestFrame(p []byte) (ingestFrame, error) {
	if len(p) < ingestHeaderMin {
		return ingestFrame{}, errIngestShort
	}
	idLen := int(p[0])
	if len(p) < 1+idLen+1+8 {
		return ingestFrame{}, errIngestShort
	}
	if idLen == 0 {
		return ingestFrame{}, errors.New("webservice: ingest frame has empty channel id")
	}
	flags := p[1+idLen]
	return ingestFrame{
		channelID:   string(p[1 : 1+idLen]),
		keyframe:    flags&ingestFlagKeyframe != 0,
		timestampUs: binary.BigEndian.Uint64(p[1+idLen+1 : 1+idLen+9]),
		payload:     p[1+idLen+9:],
	}, nil
}

type producerConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *producerConn) writeJSON(v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(v)
}

func (s *Service) handleIngestWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("ingest upgrade:", err)
		return
	}

	producer := &producerConn{conn: conn}
	s.mu.Lock()
	s.producers[producer] = struct{}{}
	s.mu.Unlock()
	log.Println("ingest producer connected:", conn.RemoteAddr())

	defer func() {
		s.mu.Lock()
		delete(s.producers, producer)
		s.mu.Unlock()
		conn.Close()
		log.Println("ingest producer disconnected:", conn.RemoteAddr())
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("ingest read:", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		frame, err := parseIngestFrame(data)
		if err != nil {
			log.Println("ingest:", err)
			continue
		}
		s.relay.PushFrame(frame.channelID, frame.payload, frame.keyframe, int64(frame.timestampUs))
	}
}

// requestKeyframe forwards a receiver-side PLI to every connected producer
// so the encoder can emit a fresh IDR for the channel.
func (s *Service) requestKeyframe(channelID string) {
	s.mu.Lock()
	producers := make([]*producerConn, 0, len(s.producers))
	for p := range s.producers {
		producers = append(producers, p)
	}
	s.mu.Unlock()

	msg := gin.H{"type": "keyframe_request", "channel": channelID}
	for _, p := range producers {
		if err := p.writeJSON(msg); err != nil {
			log.Println("ingest keyframe request:", err)
		}
	}
}
