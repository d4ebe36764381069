package server

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/logger"
)

// Connection is one client's websocket socket, generalized from the
// teacher's Connection (ID/Conn/Send/Hub) with a player binding instead of
// a game binding — this server is single-shard, one game per process
// (§1 Non-goals), so there is exactly one Hub.
type Connection struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan Envelope
	Hub    *Hub

	mu        sync.RWMutex
	clientID  string
	player    ids.PlayerId
	hasPlayer bool
}

func NewConnection(id, clientID string, conn *websocket.Conn, hub *Hub) *Connection {
	return &Connection{
		ID:       id,
		clientID: clientID,
		Conn:     conn,
		Send:     make(chan Envelope, 256),
		Hub:      hub,
	}
}

func (c *Connection) ClientID() string { return c.clientID }

func (c *Connection) BindPlayer(p ids.PlayerId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = p
	c.hasPlayer = true
}

func (c *Connection) Player() (ids.PlayerId, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player, c.hasPlayer
}

// ReadPump decodes inbound frames and routes them to the hub for dispatch.
func (c *Connection) ReadPump(ctx context.Context) {
	log := logger.WithConnection(c.ID, "")
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, raw, err := c.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Error("websocket read error", zap.Error(err))
				}
				return
			}
			env, err := DecodeEnvelope(raw)
			if err != nil {
				log.Warn("dropping malformed frame", zap.Error(err))
				continue
			}
			select {
			case c.Hub.Inbound <- inboundMessage{Conn: c, Envelope: env}:
			default:
				log.Warn("hub inbound channel full, dropping message")
			}
		}
	}
}

// WritePump delivers queued outbound envelopes to the socket.
func (c *Connection) WritePump(ctx context.Context) {
	defer c.Conn.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(env); err != nil {
				return
			}
		}
	}
}

// SendEnvelope enqueues env for delivery, dropping the connection on a full
// buffer rather than blocking the hub (§4.I reliability is per-channel, not
// per-connection backpressure).
func (c *Connection) SendEnvelope(env Envelope) {
	select {
	case c.Send <- env:
	default:
		close(c.Send)
	}
}
