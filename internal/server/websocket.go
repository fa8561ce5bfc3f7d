package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// client is one connected websocket observer and its avatar.
type client struct {
	session  string
	entityID models.EntityID
	avatar   *Avatar
	conn     *websocket.Conn
	outbound chan []byte
	done     chan struct{}
	closeOne sync.Once
}

// clientMessage is the inbound control message format.
type clientMessage struct {
	Type string  `json:"type"`
	ID   int64   `json:"id,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Z    float64 `json:"z,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "observer"
	}
	id := s.allocateID()
	c := &client{
		session:  uuid.NewString(),
		entityID: id,
		avatar:   NewAvatar(id, name),
		conn:     conn,
		outbound: make(chan []byte, s.config.SendLimit),
		done:     make(chan struct{}),
	}

	s.addClient(c)
	s.logger.Info("observer connected",
		log.String("session", c.session),
		log.Int64("entity", int64(c.entityID)),
		log.String("remote", conn.RemoteAddr().String()))

	go c.writeLoop()
	s.readLoop(c)
}

// readLoop parses control messages until the connection drops. Everything
// that touches the manager or the avatar is forwarded to the tick goroutine.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.removeClient(c)
		c.close()
		s.logger.Info("observer disconnected",
			log.String("session", c.session),
			log.Int64("entity", int64(c.entityID)))
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("bad client message",
				log.String("session", c.session),
				log.Error(err))
			continue
		}
		switch msg.Type {
		case "move":
			s.submit(func() {
				c.avatar.X = msg.X
				c.avatar.Y = msg.Y
				c.avatar.Z = msg.Z
			})
		case "requestFullState":
			target := models.EntityID(msg.ID)
			if target == 0 {
				target = c.entityID
			}
			s.submit(func() {
				s.manager.RequestFullState(target)
			})
		default:
			s.logger.Debug("unknown client message type",
				log.String("session", c.session),
				log.String("type", msg.Type))
		}
	}
}

// send queues a payload, dropping it when the client cannot keep up. A slow
// observer recovers through the manager's periodic full resync.
func (c *client) send(payload []byte) {
	select {
	case c.outbound <- payload:
	default:
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.outbound:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOne.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
