package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/logger"
	"github.com/backbay/imperium/internal/playermanager"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/rules"
	"github.com/backbay/imperium/internal/turnmanager"
)

// inboundMessage pairs a decoded frame with the connection it arrived on,
// queued onto Hub.Inbound for the event loop to dispatch (§4.I, grounded on
// the teacher's ws_hub.go register/unregister/broadcast channel trio).
type inboundMessage struct {
	Conn     *Connection
	Envelope Envelope
}

// GameTemplate holds the fixed board parameters StartGame fills out with
// the lobby's final seat list (§4.I: "StartGame{map_size}").
type GameTemplate struct {
	Catalog             *rules.Catalog
	HorizWrap           bool
	Seed                uint64
	TurnLimit           int
	CultureThresholdPct int
	DefaultTerrain      ids.TerrainId
	TurnMode            turnmanager.Mode
	TurnParams          turnmanager.TimerParams
	GameCode            string
}

// Hub is the single authoritative coordinator for one game (§1 Non-goals:
// one game per process, no matchmaking across shards). Before StartGame it
// is a bare lobby: engine/turns/tape are nil. It owns every live
// Connection and is the only goroutine that ever touches engine state —
// every mutation arrives serialized through Inbound/Register/Unregister,
// so the engine itself needs no locking of its own.
type Hub struct {
	Template GameTemplate
	Catalog  *rules.Catalog

	engine      *engine.Engine
	gameOptions engine.NewGameOptions
	turns       *turnmanager.Manager
	tape        *replay.Tape
	started     bool

	players *playermanager.Manager

	// Archive, if set, is called once with the finished game's replay
	// export when a GameEnded event fires, so cmd/server can persist it
	// to a durable store without this package depending on replaystore.
	Archive func(replay.File)

	conns map[string]*Connection

	prevUnits  map[ids.PlayerId]map[uint64]SpottedUnit
	prevCities map[ids.PlayerId]map[uint64]SpottedCity

	Register   chan *Connection
	Unregister chan *Connection
	Inbound    chan inboundMessage

	log *zap.Logger
}

func NewHub(tmpl GameTemplate, pm *playermanager.Manager) *Hub {
	return &Hub{
		Template:   tmpl,
		Catalog:    tmpl.Catalog,
		players:    pm,
		conns:      map[string]*Connection{},
		prevUnits:  map[ids.PlayerId]map[uint64]SpottedUnit{},
		prevCities: map[ids.PlayerId]map[uint64]SpottedCity{},
		Register:   make(chan *Connection),
		Unregister: make(chan *Connection),
		Inbound:    make(chan inboundMessage, 1024),
		log:        logger.Get(),
	}
}

// Run is the hub's event loop. It never returns until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.Register:
			h.conns[c.ID] = c
		case c := <-h.Unregister:
			if _, ok := h.conns[c.ID]; ok {
				delete(h.conns, c.ID)
				h.handleDisconnect(c)
			}
		case m := <-h.Inbound:
			h.dispatch(m.Conn, m.Envelope)
		case now := <-ticker.C:
			h.tick(now)
		}
	}
}

// tick runs once a second: it expires disconnect grace periods (AI
// takeover, §4.G) and force-ends a turn whose clock has run out (§4.I
// Failure & recovery: "treated the same as EndTurn with checksum 0").
func (h *Hub) tick(now time.Time) {
	for _, seat := range h.players.ExpireDisconnects(now) {
		h.broadcastAll(encode(TypePlayerDisconnected, NotificationPayload{Message: seat.Name + " disconnected, AI took over"}))
	}
	if !h.started {
		return
	}
	if seconds, fired := h.turns.CheckWarnings(now); fired {
		h.sendToPlayer(h.engine.State().CurrentPlayer(), encode(TypeNotification, NotificationPayload{Message: timeWarningMessage(seconds)}))
	}
	if h.turns.Expired(now) {
		h.forceEndTurn()
	}
}

func timeWarningMessage(seconds int) string {
	if seconds == 30 {
		return "30 seconds remaining"
	}
	return "10 seconds remaining"
}

func (h *Hub) handleDisconnect(c *Connection) {
	seat, ok := h.players.Disconnect(c.ClientID())
	if !ok {
		return
	}
	h.broadcastAll(encode(TypePlayerDisconnected, NotificationPayload{Message: seat.Name + " disconnected"}))
}

// countUnitsAndCities is used to scale the active player's turn timer
// (§4.H: base + units*a + cities*b).
func (h *Hub) countUnitsAndCities(p ids.PlayerId) (units, cities int) {
	gs := h.engine.State()
	gs.Units.IterOrdered(func(_ uint64, u engine.Unit) {
		if u.Owner == p {
			units++
		}
	})
	gs.Cities.IterOrdered(func(_ uint64, c engine.City) {
		if c.Owner == p {
			cities++
		}
	})
	return units, cities
}

// armTurnTimer (re)starts the wall clock for the currently active player.
func (h *Hub) armTurnTimer(now time.Time) {
	p := h.engine.State().CurrentPlayer()
	units, cities := h.countUnitsAndCities(p)
	d := h.turns.StartTurn(now, units, cities)
	h.sendToPlayer(p, encode(TypeTurnStarted, TurnStartedPayload{Player: p, Turn: h.engine.State().Turn, TimeRemaining: d.Milliseconds()}))
}

// --- broadcast helpers ---

func (h *Hub) broadcastAll(env Envelope) {
	for _, c := range h.conns {
		c.SendEnvelope(env)
	}
}

func (h *Hub) sendToClient(clientID string, env Envelope) {
	for _, c := range h.conns {
		if c.ClientID() == clientID {
			c.SendEnvelope(env)
			return
		}
	}
}

func (h *Hub) sendToPlayer(p ids.PlayerId, env Envelope) {
	seat, ok := h.players.SeatByPlayer(p)
	if !ok || !seat.Connected {
		return
	}
	h.sendToClient(seat.ClientID, env)
}
