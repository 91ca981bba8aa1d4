// Package webservice exposes the signaling and ingest surface over HTTP:
// a websocket endpoint where receivers exchange SDP and ICE candidates,
// a websocket endpoint where the producer pushes encoded frames, and a
// token endpoint guarding both when a JWT secret is configured.
package webservice

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/CantorAI/streamrelay/config"
	"github.com/CantorAI/streamrelay/relay"
	"github.com/CantorAI/streamrelay/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // signaling is origin-agnostic; auth happens via JWT
	},
}

type Service struct {
	relay      *relay.Relay
	channels   []transport.ChannelSpec
	iceServers []string
	jwtSecret  []byte

	mu        sync.Mutex
	sessions  map[string]*session
	producers map[*producerConn]struct{}
}

func New(r *relay.Relay, cfg config.Config) *Service {
	s := &Service{
		relay:      r,
		iceServers: cfg.ICEServers,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessions:   make(map[string]*session),
		producers:  make(map[*producerConn]struct{}),
	}
	for _, ch := range cfg.Channels {
		s.channels = append(s.channels, transport.ChannelSpec{
			ID:    ch.ID,
			Kind:  relay.Kind(ch.Kind),
			Codec: ch.Codec,
		})
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Service) Router() *gin.Engine {
	router := gin.Default()
	router.GET("/healthz", s.handleHealth)
	router.POST("/token", s.handleToken)

	authed := router.Group("/", s.authMiddleware())
	authed.GET("/ws", s.handleSignalWS)
	authed.GET("/ingest", s.handleIngestWS)
	return router
}

func (s *Service) handleHealth(c *gin.Context) {
	s.mu.Lock()
	sessions := len(s.sessions)
	producers := len(s.producers)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"sessions":  sessions,
		"producers": producers,
		"channels":  s.relay.Stats(),
	})
}
