package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/snapshot"
)

// decodeTurnCommands parses every raw command in payload, appending a
// trailing Command::EndTurn if end_turn was requested but not already
// present (§4.I Turn submission: "end_turn=true appends Command::EndTurn if
// not present"). It rejects a submission where EndTurn appears anywhere but
// last, since a turn cannot continue after it ends.
func decodeTurnCommands(payload TurnSubmissionPayload) ([]engine.Command, int, error) {
	cmds := make([]engine.Command, 0, len(payload.Commands)+1)
	for i, raw := range payload.Commands {
		cmd, err := DecodeCommand(raw)
		if err != nil {
			return nil, i, err
		}
		if _, isEnd := cmd.(engine.EndTurn); isEnd && i != len(payload.Commands)-1 {
			return nil, i, fmt.Errorf("EndTurn must be the final command in a submission")
		}
		cmds = append(cmds, cmd)
	}
	if payload.EndTurn {
		last := len(cmds) - 1
		if last < 0 {
			cmds = append(cmds, engine.EndTurn{})
		} else if _, ok := cmds[last].(engine.EndTurn); !ok {
			cmds = append(cmds, engine.EndTurn{})
		}
	}
	return cmds, len(cmds), nil
}

// handleTurnSubmission is the core invariant of §4.I: validate turn/player/
// checksum, apply every command as one atomic batch against a forked
// engine, commit only if the whole batch succeeds, then fog-partition and
// broadcast the result.
func (h *Hub) handleTurnSubmission(c *Connection, payload TurnSubmissionPayload) {
	p, hasPlayer := c.Player()
	if !hasPlayer {
		return
	}
	gs := h.engine.State()

	if payload.TurnNumber != gs.Turn || p != gs.CurrentPlayer() {
		h.sendToClient(c.ClientID(), encode(TypeTurnRejected, TurnRejectedPayload{
			InvalidCommand: &InvalidCommand{Reason: "not your turn or stale turn number"},
		}))
		return
	}
	if payload.StateChecksum != 0 {
		cur := snapshot.Checksum(snapshot.FromEngine(gs))
		if payload.StateChecksum != cur {
			h.sendToClient(c.ClientID(), encode(TypeDesyncDetected, DesyncDetectedPayload{
				Turn: gs.Turn, Expected: cur, Received: payload.StateChecksum,
			}))
			h.pushFullResync(c.ClientID(), p)
			return
		}
	}

	commands, badIndex, err := decodeTurnCommands(payload)
	if err != nil {
		h.sendToClient(c.ClientID(), encode(TypeTurnRejected, TurnRejectedPayload{
			InvalidCommand: &InvalidCommand{Index: badIndex, Reason: err.Error()},
		}))
		return
	}

	h.applyBatch(p, gs.Turn, commands, c)
}

// forceEndTurn is invoked by the tick loop when the active player's clock
// expires; it is equivalent to a TurnSubmission{end_turn:true,
// state_checksum:0} from that player (§4.I Failure & recovery).
func (h *Hub) forceEndTurn() {
	gs := h.engine.State()
	h.applyBatch(gs.CurrentPlayer(), gs.Turn, []engine.Command{engine.EndTurn{}}, nil)
}

// applyBatch runs commands against a fork of the live engine and, only if
// every one succeeds, commits the fork and broadcasts the result. origin is
// nil for server-initiated batches (forced end turn), in which case no
// TurnAccepted is sent.
func (h *Hub) applyBatch(actor ids.PlayerId, turnBefore int, commands []engine.Command, origin *Connection) {
	fork := h.engine.Fork()

	var allEvents []engine.Event
	recorded := make([]engine.Command, 0, len(commands))
	for i, cmd := range commands {
		events, err := fork.ApplyCommandChecked(actor, cmd)
		if err != nil {
			if origin != nil {
				h.sendToClient(origin.ClientID(), encode(TypeTurnRejected, TurnRejectedPayload{
					InvalidCommand: &InvalidCommand{Index: i, Reason: err.Error()},
				}))
			}
			return
		}
		recorded = append(recorded, cmd)
		allEvents = append(allEvents, events...)
	}

	h.engine.Commit(fork)
	for _, cmd := range recorded {
		h.tape.Record(turnBefore, actor, cmd)
	}
	newGS := h.engine.State()

	snap := snapshot.FromEngine(newGS)
	checksum := snapshot.Checksum(snap)

	if origin != nil {
		h.sendToClient(origin.ClientID(), encode(TypeTurnAccepted, TurnAcceptedPayload{TurnNumber: turnBefore}))
	}

	allPlayers := append([]ids.PlayerId(nil), newGS.PlayerOrder...)
	perPlayer := map[ids.PlayerId][]engine.Event{}
	turnEnded := false
	for _, ev := range allEvents {
		if _, ok := ev.(engine.TurnEnded); ok {
			turnEnded = true
		}
		for _, recipient := range RecipientsFor(newGS, ev, allPlayers) {
			perPlayer[recipient] = append(perPlayer[recipient], ev)
		}
	}

	for _, pid := range allPlayers {
		diff, curUnits, curCities := DiffVisibility(newGS, pid, h.prevUnits[pid], h.prevCities[pid])
		h.prevUnits[pid] = curUnits
		h.prevCities[pid] = curCities

		deltas := make([]map[string]interface{}, 0, len(perPlayer[pid]))
		for _, ev := range perPlayer[pid] {
			deltas = append(deltas, eventPayload(ev))
		}
		for _, su := range diff.UnitsSpotted {
			deltas = append(deltas, spottedUnitPayload(su))
		}
		for _, id := range diff.UnitsHidden {
			deltas = append(deltas, map[string]interface{}{"type": "UnitHidden", "id": id})
		}
		for _, sc := range diff.CitiesSpotted {
			deltas = append(deltas, spottedCityPayload(sc))
		}
		for _, id := range diff.CitiesHidden {
			deltas = append(deltas, map[string]interface{}{"type": "CityHidden", "id": id})
		}

		h.sendToPlayer(pid, encode(TypeStateDelta, StateDeltaPayload{TurnNumber: newGS.Turn, Deltas: deltas, Checksum: checksum}))
	}

	if turnEnded {
		h.broadcastAll(encode(TypeTurnEnded, TurnEndedPayload{Player: actor, Turn: turnBefore}))
		h.armTurnTimer(time.Now())
	}

	for _, ev := range allEvents {
		if ge, ok := ev.(engine.GameEnded); ok {
			h.broadcastAll(encode(TypeGameEnded, GameEndedPayload{Winner: ge.Winner, Reason: ge.Reason}))
			if h.Archive != nil {
				h.Archive(replay.Export(h.tape, h.gameOptions, h.Catalog.Hash()))
			}
		}
	}
}

// pushFullResync sends a client a complete, fog-filtered rebase: the
// current snapshot, the rules catalog, a visibility delta, and a promise
// strip (§4.I: "push a full filtered GameState + rules catalog + current
// visibility delta + promise strip, letting the client rebase").
func (h *Hub) pushFullResync(clientID string, p ids.PlayerId) {
	gs := h.engine.State()
	vis := gs.Visibility[p]
	snap := snapshot.FromEngine(gs)
	filtered := FilterSnapshotForPlayer(snap, p, vis)
	checksum := snapshot.Checksum(snap)

	h.sendToClient(clientID, encode(TypeGameState, GameStatePayload{Snapshot: filtered, Checksum: checksum}))
	h.sendToClient(clientID, encode(TypeRulesNames, RulesNamesPayload{Names: rulesNames(h.Catalog)}))
	h.sendToClient(clientID, encode(TypeRulesCatalog, RulesCatalogPayload{Catalog: h.Catalog}))

	diff, curUnits, curCities := DiffVisibility(gs, p, nil, nil)
	h.prevUnits[p] = curUnits
	h.prevCities[p] = curCities
	deltas := make([]map[string]interface{}, 0, len(diff.UnitsSpotted)+len(diff.CitiesSpotted))
	for _, su := range diff.UnitsSpotted {
		deltas = append(deltas, spottedUnitPayload(su))
	}
	for _, sc := range diff.CitiesSpotted {
		deltas = append(deltas, spottedCityPayload(sc))
	}
	h.sendToClient(clientID, encode(TypeStateDelta, StateDeltaPayload{TurnNumber: gs.Turn, Deltas: deltas, Checksum: checksum}))

	h.sendToClient(clientID, encode(TypePromiseStrip, PromiseStripPayload{Entries: engine.PromiseStrip(gs, p)}))
}

// eventPayload flattens an engine.Event into the {type, ...fields} shape a
// StateDelta entry travels in on the wire.
func eventPayload(e engine.Event) map[string]interface{} {
	raw, err := json.Marshal(e)
	m := map[string]interface{}{}
	if err == nil {
		_ = json.Unmarshal(raw, &m)
	}
	m["type"] = eventTypeName(e)
	return m
}

func eventTypeName(e engine.Event) string {
	t := fmt.Sprintf("%T", e)
	if i := strings.LastIndex(t, "."); i >= 0 {
		return t[i+1:]
	}
	return t
}

func spottedUnitPayload(su SpottedUnit) map[string]interface{} {
	return map[string]interface{}{
		"type": "UnitSpotted", "id": su.ID, "unit_type": su.TypeID, "owner": su.Owner,
		"q": su.Q, "r": su.R, "hp": su.HP, "max_hp": su.MaxHP, "moves_left": su.MovesLeft,
	}
}

func spottedCityPayload(sc SpottedCity) map[string]interface{} {
	return map[string]interface{}{
		"type": "CitySpotted", "id": sc.ID, "name": sc.Name, "owner": sc.Owner,
		"q": sc.Q, "r": sc.R, "population": sc.Population,
	}
}
