package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/playermanager"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/rules"
	"github.com/backbay/imperium/internal/snapshot"
	"github.com/backbay/imperium/internal/turnmanager"
)

// These tests drive the Hub's unexported handlers directly rather than
// over a real socket: dispatch is the single chokepoint every inbound
// frame passes through regardless of transport, so exercising it here
// covers the same ground as a live websocket without the harness weight.

func newTestHub(minPlayers, maxPlayers int, seed uint64) *Hub {
	pm := playermanager.NewManager(minPlayers, maxPlayers, 4, time.Minute)
	tmpl := GameTemplate{
		Catalog:             rules.DefaultCatalog(),
		HorizWrap:           true,
		Seed:                seed,
		CultureThresholdPct: 60,
		DefaultTerrain:      ids.TerrainId(1),
		TurnMode:            turnmanager.ModeSequential,
		TurnParams: turnmanager.TimerParams{
			BaseSeconds: 30, MinSeconds: 15, MaxSeconds: 180,
			PerUnitSeconds: 1, PerCitySeconds: 3,
		},
	}
	return NewHub(tmpl, pm)
}

// drain collects every envelope currently buffered on c's outbound channel
// without blocking.
func drain(c *Connection) []Envelope {
	var out []Envelope
	for {
		select {
		case e, ok := <-c.Send:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func findType(envs []Envelope, msgType string) (Envelope, bool) {
	for _, e := range envs {
		if e.Type == msgType {
			return e, true
		}
	}
	return Envelope{}, false
}

func joinPlayer(h *Hub, clientID, name string) *Connection {
	c := NewConnection(clientID, clientID, nil, h)
	h.conns[c.ID] = c
	h.dispatch(c, encode("JoinRequest", JoinRequestPayload{Name: name}))
	drain(c)
	return c
}

// startGame joins n players, has the first (host) start the game, and
// returns the connections in seat order.
func startGame(t *testing.T, h *Hub, n int, mapSize int) []*Connection {
	t.Helper()
	conns := make([]*Connection, n)
	for i := 0; i < n; i++ {
		conns[i] = joinPlayer(h, testClientID(i), playerName(i))
	}
	h.dispatch(conns[0], encode("StartGame", StartGamePayload{MapSize: mapSize}))
	for _, c := range conns {
		drain(c)
	}
	require.True(t, h.started)
	return conns
}

func testClientID(i int) string { return "client-" + string(rune('A'+i)) }
func playerName(i int) string   { return "Player" + string(rune('0'+i)) }

func encodeCommands(cmds ...engine.Command) []json.RawMessage {
	out := make([]json.RawMessage, len(cmds))
	for i, cmd := range cmds {
		raw, err := wireEncodeCommand(cmd)
		if err != nil {
			panic(err)
		}
		out[i] = raw
	}
	return out
}

// wireEncodeCommand builds the same wire shape DecodeCommand expects, for
// the handful of command types these tests submit.
func wireEncodeCommand(cmd engine.Command) (json.RawMessage, error) {
	switch v := cmd.(type) {
	case engine.EndTurn:
		return json.Marshal(map[string]interface{}{"type": "EndTurn"})
	case engine.DeclareWar:
		return json.Marshal(map[string]interface{}{"type": "DeclareWar", "target_player": v.Target})
	case engine.MoveUnit:
		path := make([]map[string]int32, len(v.Path))
		for i, h := range v.Path {
			path[i] = map[string]int32{"q": h.Q, "r": h.R}
		}
		return json.Marshal(map[string]interface{}{"type": "MoveUnit", "unit": uint64(v.Unit), "path": path})
	default:
		panic("wireEncodeCommand: unhandled command type")
	}
}

// --- S1 Deterministic new game ---

func TestDeterministicNewGame(t *testing.T) {
	opts := engine.NewGameOptions{
		Catalog: rules.DefaultCatalog(), MapWidth: 8, MapHeight: 8, HorizWrap: true,
		NumPlayers: 2, PlayerNames: []string{"Atlas", "Borea"}, Seed: 123,
		CultureThresholdPct: 60, DefaultTerrain: ids.TerrainId(1),
	}
	gs1 := engine.NewGame(opts)
	gs2 := engine.NewGame(opts)

	assert.Equal(t, snapshot.Checksum(snapshot.FromEngine(gs1)), snapshot.Checksum(snapshot.FromEngine(gs2)))

	e := engine.NewEngine(gs1)
	events, err := e.ApplyCommandChecked(ids.PlayerId(0), engine.DeclareWar{Target: ids.PlayerId(1)})
	require.NoError(t, err)

	var sawWar bool
	for _, ev := range events {
		if wd, ok := ev.(engine.WarDeclared); ok {
			assert.Equal(t, ids.PlayerId(0), wd.Declarer)
			assert.Equal(t, ids.PlayerId(1), wd.Target)
			sawWar = true
		}
	}
	assert.True(t, sawWar, "expected a WarDeclared event")
	assert.True(t, e.State().Diplomacy.AtWarBetween(ids.PlayerId(0), ids.PlayerId(1)))
}

// --- S2 Atomic rejection ---

func TestAtomicRejection(t *testing.T) {
	h := newTestHub(2, 2, 123)
	conns := startGame(t, h, 2, 16)

	before := snapshot.Checksum(snapshot.FromEngine(h.engine.State()))

	cmds := encodeCommands(
		engine.MoveUnit{Unit: ids.UnitId(999999), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}}},
		engine.EndTurn{},
	)
	h.handleTurnSubmission(conns[0], TurnSubmissionPayload{
		TurnNumber: h.engine.State().Turn, Commands: cmds, EndTurn: false,
	})

	after := snapshot.Checksum(snapshot.FromEngine(h.engine.State()))
	assert.Equal(t, before, after, "a rejected batch must not mutate engine state")

	envs := drain(conns[0])
	rej, ok := findType(envs, TypeTurnRejected)
	require.True(t, ok, "expected TurnRejected")
	var payload TurnRejectedPayload
	require.NoError(t, json.Unmarshal(rej.Payload, &payload))
	require.NotNil(t, payload.InvalidCommand)
	assert.Equal(t, 0, payload.InvalidCommand.Index)

	for _, c := range conns[1:] {
		_, sawDelta := findType(drain(c), TypeStateDelta)
		assert.False(t, sawDelta, "no deltas should broadcast for a rejected batch")
	}
}

// --- S3 Fog routing ---

func TestFogRouting(t *testing.T) {
	h := newTestHub(2, 2, 42)
	conns := startGame(t, h, 2, 20)
	for _, c := range conns {
		drain(c)
	}

	gs := h.engine.State()
	cityOwner := ids.PlayerId(1)
	gs.Cities.Insert(engine.City{
		Name: "Borea Prime", Owner: cityOwner, Position: hexmap.Hex{Q: 10, R: 10},
		Population: 1, Buildings: map[ids.BuildingId]struct{}{},
	})
	unitID := gs.Units.Insert(engine.Unit{
		TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 10, R: 7},
		HP: 10, MaxHP: 10, MovesLeft: 5,
	})

	// P0 moves first; this establishes P0's own surroundings but neither
	// reveals the distant city nor requires P1 to have acted yet.
	h.handleTurnSubmission(conns[0], TurnSubmissionPayload{
		TurnNumber: gs.Turn, Commands: encodeCommands(engine.EndTurn{}), EndTurn: false,
	})
	for _, c := range conns {
		drain(c)
	}

	// P1 ends its turn, establishing city-based visibility around Borea
	// Prime for the first time.
	h.handleTurnSubmission(conns[1], TurnSubmissionPayload{
		TurnNumber: h.engine.State().Turn, Commands: encodeCommands(engine.EndTurn{}), EndTurn: false,
	})
	for _, c := range conns {
		drain(c)
	}

	// P0 moves its unit one step closer, into Borea Prime's sight radius,
	// revealing the city to P0 and simultaneously becoming visible to P1
	// (whose sight already covers that tile from the previous step).
	h.handleTurnSubmission(conns[0], TurnSubmissionPayload{
		TurnNumber: h.engine.State().Turn,
		Commands: encodeCommands(engine.MoveUnit{
			Unit: ids.UnitId(unitID),
			Path: []hexmap.Hex{{Q: 10, R: 7}, {Q: 10, R: 8}},
		}),
		EndTurn: false,
	})

	p0Envs := drain(conns[0])
	delta0, ok := findType(p0Envs, TypeStateDelta)
	require.True(t, ok)
	var p0Payload StateDeltaPayload
	require.NoError(t, json.Unmarshal(delta0.Payload, &p0Payload))
	assert.True(t, containsDeltaType(p0Payload.Deltas, "CitySpotted"), "P0 should spot Borea Prime")

	p1Envs := drain(conns[1])
	delta1, ok := findType(p1Envs, TypeStateDelta)
	require.True(t, ok)
	var p1Payload StateDeltaPayload
	require.NoError(t, json.Unmarshal(delta1.Payload, &p1Payload))
	assert.True(t, containsDeltaType(p1Payload.Deltas, "UnitSpotted"), "P1 should spot P0's approaching unit")
}

func containsDeltaType(deltas []map[string]interface{}, want string) bool {
	for _, d := range deltas {
		if t, _ := d["type"].(string); t == want {
			return true
		}
	}
	return false
}

// --- S4 Reconnect ---

func TestReconnect(t *testing.T) {
	h := newTestHub(2, 2, 7)
	conns := startGame(t, h, 2, 16)
	c0 := conns[0]

	seat, ok := h.players.SeatByClient(c0.ClientID())
	require.True(t, ok)
	originalPlayer := seat.Player
	token := seat.ReconnectToken.String()

	h.handleDisconnect(c0)
	delete(h.conns, c0.ID)

	newConn := NewConnection("new-conn", "new-client", nil, h)
	h.conns[newConn.ID] = newConn
	h.dispatch(newConn, encode("JoinRequest", JoinRequestPayload{ReconnectToken: &token}))

	envs := drain(newConn)
	accepted, ok := findType(envs, TypeJoinAccepted)
	require.True(t, ok)
	var payload JoinAcceptedPayload
	require.NoError(t, json.Unmarshal(accepted.Payload, &payload))
	assert.Equal(t, originalPlayer, payload.PlayerID)

	_, sawGameState := findType(envs, TypeGameState)
	assert.True(t, sawGameState)
	_, sawRulesCatalog := findType(envs, TypeRulesCatalog)
	assert.True(t, sawRulesCatalog)
	_, sawStateDelta := findType(envs, TypeStateDelta)
	assert.True(t, sawStateDelta)
	_, sawPromiseStrip := findType(envs, TypePromiseStrip)
	assert.True(t, sawPromiseStrip)

	otherEnvs := drain(conns[1])
	_, sawReconnected := findType(otherEnvs, TypePlayerReconnected)
	assert.True(t, sawReconnected)
}

// --- S5 Desync recovery ---

func TestDesyncRecovery(t *testing.T) {
	h := newTestHub(2, 2, 55)
	conns := startGame(t, h, 2, 16)
	for _, c := range conns {
		drain(c)
	}

	gs := h.engine.State()
	before := snapshot.Checksum(snapshot.FromEngine(gs))

	h.handleTurnSubmission(conns[0], TurnSubmissionPayload{
		TurnNumber: gs.Turn, Commands: encodeCommands(engine.EndTurn{}), EndTurn: false, StateChecksum: 0xDEAD,
	})

	envs := drain(conns[0])
	desync, ok := findType(envs, TypeDesyncDetected)
	require.True(t, ok)
	var payload DesyncDetectedPayload
	require.NoError(t, json.Unmarshal(desync.Payload, &payload))
	assert.Equal(t, uint64(0xDEAD), payload.Received)
	assert.Equal(t, before, payload.Expected)

	_, sawResync := findType(envs, TypeGameState)
	assert.True(t, sawResync)

	after := snapshot.Checksum(snapshot.FromEngine(h.engine.State()))
	assert.Equal(t, before, after, "engine must be unchanged after a desync rejection")

	h.handleTurnSubmission(conns[0], TurnSubmissionPayload{
		TurnNumber: h.engine.State().Turn, Commands: encodeCommands(engine.EndTurn{}), EndTurn: false, StateChecksum: before,
	})
	envs = drain(conns[0])
	_, accepted := findType(envs, TypeTurnAccepted)
	assert.True(t, accepted, "a resubmission with the correct checksum must succeed")
}

// --- S6 Replay roundtrip ---

func TestReplayRoundtrip(t *testing.T) {
	h := newTestHub(2, 2, 999)
	conns := startGame(t, h, 2, 16)
	for _, c := range conns {
		drain(c)
	}

	for i := 0; i < 20; i++ {
		actor := h.engine.State().CurrentPlayer()
		var c *Connection
		for _, cc := range conns {
			if p, ok := cc.Player(); ok && p == actor {
				c = cc
				break
			}
		}
		require.NotNil(t, c)
		h.handleTurnSubmission(c, TurnSubmissionPayload{
			TurnNumber: h.engine.State().Turn, Commands: encodeCommands(engine.EndTurn{}), EndTurn: false,
		})
		for _, cc := range conns {
			drain(cc)
		}
	}

	finalChecksum := snapshot.Checksum(snapshot.FromEngine(h.engine.State()))
	finalSnapshot := snapshot.FromEngine(h.engine.State())

	file := replay.Export(h.tape, h.gameOptions, h.Catalog.Hash())
	assert.Len(t, file.Commands, 20)

	replayed, err := replay.Import(file, h.Catalog)
	require.NoError(t, err)

	assert.Equal(t, finalChecksum, snapshot.Checksum(snapshot.FromEngine(replayed.State())))

	replayedJSON, err := json.Marshal(snapshot.FromEngine(replayed.State()))
	require.NoError(t, err)
	originalJSON, err := json.Marshal(finalSnapshot)
	require.NoError(t, err)
	assert.JSONEq(t, string(originalJSON), string(replayedJSON))
}
