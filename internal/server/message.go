// Package server implements the authoritative network layer (§4.I): the
// websocket Hub/Connection/Dispatcher, turn submission pipeline,
// fog-of-war event routing, snapshot filtering and query handlers.
// Grounded on the teacher's internal/delivery/websocket trio
// (Hub/Connection/WebSocketActionDispatcher), generalized from a
// per-action handler registry to the spec's fixed message taxonomy.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/rules"
	"github.com/backbay/imperium/internal/snapshot"
)

// Envelope is the wire shape every ClientMessage/ServerMessage travels in:
// a type discriminant plus a raw payload, mirroring the teacher's
// dto.WebSocketMessage{Type, Payload}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encode(msgType string, payload interface{}) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	return Envelope{Type: msgType, Payload: raw}
}

// --- ClientMessage payloads (§4.I) ---

type JoinRequestPayload struct {
	Name           string  `json:"name"`
	ReconnectToken *string `json:"reconnect_token,omitempty"`
	Observer       bool    `json:"observer,omitempty"`
}

type AuthenticatePayload struct {
	GameCode string `json:"game_code"`
}

type SetReadyPayload struct {
	Ready bool `json:"ready"`
}

type StartGamePayload struct {
	MapSize int `json:"map_size"`
}

type TurnSubmissionPayload struct {
	TurnNumber     int               `json:"turn_number"`
	Commands       []json.RawMessage `json:"commands"`
	EndTurn        bool              `json:"end_turn"`
	StateChecksum  uint64            `json:"state_checksum"`
}

type StateAckPayload struct {
	TurnNumber int    `json:"turn_number"`
	Checksum   uint64 `json:"checksum"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// QueryKind enumerates the Query* client message family (§4.I).
type QueryKind string

const (
	QueryPromiseStrip     QueryKind = "promise_strip"
	QueryCityUI           QueryKind = "city_ui"
	QueryProductionOptions QueryKind = "production_options"
	QueryCombatPreview     QueryKind = "combat_preview"
	QueryCombatWhyKind     QueryKind = "combat_why"
	QueryPathPreview       QueryKind = "path_preview"
	QueryMaintenanceWhyKind QueryKind = "maintenance_why"
)

type QueryPayload struct {
	Kind       QueryKind `json:"kind"`
	CityID     *uint64   `json:"city,omitempty"`
	AttackerID *uint64   `json:"attacker,omitempty"`
	DefenderID *uint64   `json:"defender,omitempty"`
	UnitID     *uint64   `json:"unit,omitempty"`
	Path       []wireHex `json:"path,omitempty"`
}

// --- ServerMessage type constants (§4.I) ---

const (
	TypeJoinAccepted     = "JoinAccepted"
	TypeJoinRejected     = "JoinRejected"
	TypeLobbyState       = "LobbyState"
	TypePlayerReady      = "PlayerReady"
	TypePlayerConnected  = "PlayerConnected"
	TypePlayerDisconnected = "PlayerDisconnected"
	TypePlayerReconnected = "PlayerReconnected"
	TypeGameStarting     = "GameStarting"
	TypeGameState        = "GameState"
	TypeStateDelta       = "StateDelta"
	TypeTurnStarted      = "TurnStarted"
	TypeTurnEnded        = "TurnEnded"
	TypeTurnAccepted     = "TurnAccepted"
	TypeTurnRejected     = "TurnRejected"
	TypeDesyncDetected   = "DesyncDetected"
	TypeRulesNames       = "RulesNames"
	TypeRulesCatalog     = "RulesCatalog"
	TypePromiseStrip     = "PromiseStrip"
	TypeCityUI           = "CityUi"
	TypeProductionOptions = "ProductionOptions"
	TypeCombatPreview    = "CombatPreview"
	TypePathPreview      = "PathPreview"
	TypeWhyPanel         = "WhyPanel"
	TypeChat             = "Chat"
	TypePong             = "Pong"
	TypeNotification     = "Notification"
	TypeGameEnded        = "GameEnded"
	TypeReplayFile       = "ReplayFile"
	TypeReplayDenied     = "ReplayDenied"
)

type JoinAcceptedPayload struct {
	PlayerID       ids.PlayerId `json:"player_id"`
	ReconnectToken string       `json:"reconnect_token"`
}

type JoinRejectedPayload struct {
	Reason string `json:"reason"`
}

type LobbyPlayerView struct {
	PlayerID ids.PlayerId `json:"player_id"`
	Name     string       `json:"name"`
	Observer bool         `json:"observer"`
	Ready    bool         `json:"ready"`
	Host     bool         `json:"host"`
}

type LobbyStatePayload struct {
	Players []LobbyPlayerView `json:"players"`
	Host    ids.PlayerId      `json:"host"`
	Min     int               `json:"min"`
	Max     int               `json:"max"`
}

type TurnAcceptedPayload struct {
	TurnNumber int `json:"turn_number"`
}

type InvalidCommand struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type TurnRejectedPayload struct {
	InvalidCommand *InvalidCommand `json:"invalid_command,omitempty"`
}

type DesyncDetectedPayload struct {
	Turn     int    `json:"turn"`
	Expected uint64 `json:"expected"`
	Received uint64 `json:"received"`
}

type StateDeltaPayload struct {
	TurnNumber int                      `json:"turn_number"`
	Deltas     []map[string]interface{} `json:"deltas"`
	Checksum   uint64                   `json:"checksum"`
}

type TurnStartedPayload struct {
	Player        ids.PlayerId `json:"player"`
	Turn          int          `json:"turn"`
	TimeRemaining int64        `json:"time_remaining_ms"`
}

type TurnEndedPayload struct {
	Player ids.PlayerId `json:"player"`
	Turn   int          `json:"turn"`
}

type GameEndedPayload struct {
	Winner *ids.PlayerId `json:"winner,omitempty"`
	Reason string        `json:"reason"`
}

type NotificationPayload struct {
	Message string `json:"message"`
}

type GameStartingPayload struct {
	CountdownMs int64 `json:"countdown_ms"`
}

type GameStatePayload struct {
	Snapshot snapshot.Snapshot `json:"snapshot"`
	Checksum uint64            `json:"checksum"`
}

type RulesNamesPayload struct {
	Names map[string]string `json:"names"`
}

type RulesCatalogPayload struct {
	Catalog *rules.Catalog `json:"catalog"`
}

type PromiseStripPayload struct {
	Entries []engine.PromiseEntry `json:"entries"`
}

type PlayerReconnectedPayload struct {
	PlayerID ids.PlayerId `json:"player_id"`
	Name     string       `json:"name"`
}

type PlayerConnectedPayload struct {
	PlayerID ids.PlayerId `json:"player_id"`
	Name     string       `json:"name"`
}

type ReplayDeniedPayload struct {
	Reason string `json:"reason"`
}

type ReplayFilePayload struct {
	File replay.File `json:"file"`
}

// DecodeEnvelope parses the outer {type, payload} wire frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}
