package server

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/playermanager"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/turnmanager"
)

// dispatch routes one decoded frame to its handler (§4.I message taxonomy).
// It is only ever called from the Hub's own goroutine.
func (h *Hub) dispatch(c *Connection, env Envelope) {
	switch env.Type {
	case "Authenticate":
		var p AuthenticatePayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.handleAuthenticate(c, p)
		}
	case "JoinRequest":
		var p JoinRequestPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.handleJoinRequest(c, p)
		}
	case "SetReady":
		var p SetReadyPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.handleSetReady(c, p)
		}
	case "StartGame":
		var p StartGamePayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.handleStartGame(c, p)
		}
	case "TurnSubmission":
		var p TurnSubmissionPayload
		if json.Unmarshal(env.Payload, &p) == nil && h.started {
			h.handleTurnSubmission(c, p)
		}
	case "RequestState":
		if h.started {
			if p, ok := c.Player(); ok {
				h.pushFullResync(c.ClientID(), p)
			}
		}
	case "RequestReplay":
		h.handleRequestReplay(c)
	case "Query":
		var p QueryPayload
		if json.Unmarshal(env.Payload, &p) == nil && h.started {
			h.handleQuery(c, p)
		}
	case "Chat":
		var p ChatPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.broadcastAll(encode(TypeChat, p))
		}
	case "Ping":
		var p PingPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			h.sendToClient(c.ClientID(), encode(TypePong, p))
		}
	case "StateAck":
		// Acknowledgements are informational only; nothing to do (§4.I
		// ordering guarantees rely on per-client FIFO delivery, not acks).
	}
}

func (h *Hub) handleAuthenticate(c *Connection, p AuthenticatePayload) {
	if h.Template.GameCode != "" && p.GameCode != h.Template.GameCode {
		h.sendToClient(c.ClientID(), encode(TypeJoinRejected, JoinRejectedPayload{Reason: "bad game code"}))
	}
}

func (h *Hub) handleJoinRequest(c *Connection, p JoinRequestPayload) {
	if p.ReconnectToken != nil {
		token, err := uuid.Parse(*p.ReconnectToken)
		if err == nil {
			if seat, ok := h.players.Reconnect(c.ClientID(), token); ok {
				c.BindPlayer(seat.Player)
				h.sendToClient(c.ClientID(), encode(TypeJoinAccepted, JoinAcceptedPayload{PlayerID: seat.Player, ReconnectToken: seat.ReconnectToken.String()}))
				h.broadcastAllExcept(c.ClientID(), encode(TypePlayerReconnected, PlayerReconnectedPayload{PlayerID: seat.Player, Name: seat.Name}))
				if h.started {
					h.pushFullResync(c.ClientID(), seat.Player)
				} else {
					h.broadcastLobbyState()
				}
				return
			}
		}
		h.sendToClient(c.ClientID(), encode(TypeJoinRejected, JoinRejectedPayload{Reason: "invalid reconnect token"}))
		return
	}

	seat, reason := h.players.AddPlayer(c.ClientID(), p.Name, p.Observer)
	if reason != playermanager.RejectNone {
		h.sendToClient(c.ClientID(), encode(TypeJoinRejected, JoinRejectedPayload{Reason: joinRejectReason(reason)}))
		return
	}
	c.BindPlayer(seat.Player)
	h.sendToClient(c.ClientID(), encode(TypeJoinAccepted, JoinAcceptedPayload{PlayerID: seat.Player, ReconnectToken: seat.ReconnectToken.String()}))
	h.broadcastAllExcept(c.ClientID(), encode(TypePlayerConnected, PlayerConnectedPayload{PlayerID: seat.Player, Name: seat.Name}))
	h.broadcastLobbyState()
}

func joinRejectReason(r playermanager.JoinRejectReason) string {
	switch r {
	case playermanager.RejectGameFull:
		return "game full"
	case playermanager.RejectObserversFull:
		return "observer slots full"
	case playermanager.RejectGameInProgress:
		return "game already in progress"
	case playermanager.RejectAlreadyExists:
		return "name already taken"
	case playermanager.RejectInvalidReconnectToken:
		return "invalid reconnect token"
	default:
		return "rejected"
	}
}

func (h *Hub) handleSetReady(c *Connection, p SetReadyPayload) {
	if err := h.players.SetReady(c.ClientID(), p.Ready); err != nil {
		return
	}
	seat, _ := h.players.SeatByClient(c.ClientID())
	h.broadcastAll(encode(TypePlayerReady, LobbyPlayerView{PlayerID: seat.Player, Name: seat.Name, Observer: seat.Observer, Ready: seat.Ready, Host: seat.Host}))
}

func (h *Hub) broadcastLobbyState() {
	h.broadcastAll(encode(TypeLobbyState, h.lobbyStatePayload()))
}

func (h *Hub) lobbyStatePayload() LobbyStatePayload {
	seats := h.players.Seats()
	sort.Slice(seats, func(i, j int) bool { return seats[i].Player < seats[j].Player })
	players := make([]LobbyPlayerView, 0, len(seats))
	var host ids.PlayerId
	for _, s := range seats {
		players = append(players, LobbyPlayerView{PlayerID: s.Player, Name: s.Name, Observer: s.Observer, Ready: s.Ready, Host: s.Host})
		if s.Host {
			host = s.Player
		}
	}
	return LobbyStatePayload{Players: players, Host: host, Min: h.players.MinPlayers, Max: h.players.MaxPlayers}
}

// handleStartGame materializes the engine from the lobby's final seat list
// (§4.I StartGame{map_size}): only the host may start, and only once the
// minimum player count is seated.
func (h *Hub) handleStartGame(c *Connection, p StartGamePayload) {
	if h.started || !h.players.IsHost(c.ClientID()) {
		return
	}
	seats := h.players.Seats()
	var order []ids.PlayerId
	for _, s := range seats {
		if s.Observer {
			continue
		}
		order = append(order, s.Player)
	}
	if len(order) < h.players.MinPlayers {
		h.sendToClient(c.ClientID(), encode(TypeNotification, NotificationPayload{Message: "not enough players to start"}))
		return
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	names := make([]string, len(order))
	for i, pid := range order {
		seat, _ := h.players.SeatByPlayer(pid)
		names[i] = seat.Name
	}

	size := p.MapSize
	if size < 8 {
		size = 24
	}
	opts := engine.NewGameOptions{
		Catalog: h.Template.Catalog, MapWidth: size, MapHeight: size, HorizWrap: h.Template.HorizWrap,
		NumPlayers: len(order), PlayerNames: names, Seed: h.Template.Seed,
		TurnLimit: h.Template.TurnLimit, CultureThresholdPct: h.Template.CultureThresholdPct,
		DefaultTerrain: h.Template.DefaultTerrain,
	}
	gs := engine.NewGame(opts)
	h.engine = engine.NewEngine(gs)
	h.gameOptions = opts
	h.tape = replay.NewTape()
	h.turns = turnmanager.NewManager(h.Template.TurnMode, h.Template.TurnParams, order)
	h.players.GameInProgress = true
	h.started = true

	h.broadcastAll(encode(TypeGameStarting, GameStartingPayload{CountdownMs: 0}))
	for _, pid := range order {
		seat, _ := h.players.SeatByPlayer(pid)
		h.pushFullResync(seat.ClientID, pid)
	}
	h.armTurnTimer(time.Now())
}

func (h *Hub) handleRequestReplay(c *Connection) {
	if h.tape == nil {
		h.sendToClient(c.ClientID(), encode(TypeReplayDenied, ReplayDeniedPayload{Reason: "no game in progress"}))
		return
	}
	file := replay.Export(h.tape, h.gameOptions, h.Catalog.Hash())
	h.sendToClient(c.ClientID(), encode(TypeReplayFile, ReplayFilePayload{File: file}))
}

func (h *Hub) broadcastAllExcept(clientID string, env Envelope) {
	for _, c := range h.conns {
		if c.ClientID() == clientID {
			continue
		}
		c.SendEnvelope(env)
	}
}
