// Package replay implements the ordered append-only command tape and its
// export/import round trip (§4.F).
package replay

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

const currentVersion = 1

// RecordedCommand is one tape entry: the turn and player it was applied
// under, plus the command itself.
type RecordedCommand struct {
	Turn    int
	Player  ids.PlayerId
	Command engine.Command
}

// Tape accumulates RecordedCommand entries as a game is played.
type Tape struct {
	commands []RecordedCommand
}

func NewTape() *Tape { return &Tape{} }

// Record appends a successfully applied command (§4.F: "on every successful
// apply_command_checked"). Callers must not record rejected commands.
func (t *Tape) Record(turn int, player ids.PlayerId, cmd engine.Command) {
	t.commands = append(t.commands, RecordedCommand{Turn: turn, Player: player, Command: cmd})
}

func (t *Tape) Commands() []RecordedCommand { return t.commands }

// File is the exported replay format (§4.F).
type File struct {
	Version             int
	MapWidth            int
	MapHeight           int
	HorizWrap           bool
	NumPlayers          int
	PlayerNames         []string
	Seed                uint64
	TurnLimit           int
	CultureThresholdPct int
	DefaultTerrain      ids.TerrainId
	RulesHash           uint64
	Commands            []RecordedCommand
}

// Export snapshots the tape and the original game parameters into a File.
func Export(t *Tape, opts engine.NewGameOptions, rulesHash uint64) File {
	return File{
		Version:             currentVersion,
		MapWidth:            opts.MapWidth,
		MapHeight:           opts.MapHeight,
		HorizWrap:           opts.HorizWrap,
		NumPlayers:          opts.NumPlayers,
		PlayerNames:         append([]string(nil), opts.PlayerNames...),
		Seed:                opts.Seed,
		TurnLimit:           opts.TurnLimit,
		CultureThresholdPct: opts.CultureThresholdPct,
		DefaultTerrain:      opts.DefaultTerrain,
		RulesHash:           rulesHash,
		Commands:            append([]RecordedCommand(nil), t.commands...),
	}
}

// Import re-creates a fresh engine from f's recorded parameters and rules
// catalog, then replays every command, enforcing that each entry's
// (turn, player) matches the engine's live (turn, current_player) before
// applying it (§4.F).
func Import(f File, catalog *rules.Catalog) (*engine.Engine, error) {
	if f.Version != currentVersion {
		return nil, &gameerrors.ReplayImportError{Kind: gameerrors.ErrUnsupportedVersion}
	}
	if catalog.Hash() != f.RulesHash {
		return nil, &gameerrors.ReplayImportError{Kind: gameerrors.ErrRulesHashMismatch, Expected: f.RulesHash, Got: catalog.Hash()}
	}

	gs := engine.NewGame(engine.NewGameOptions{
		Catalog: catalog, MapWidth: f.MapWidth, MapHeight: f.MapHeight, HorizWrap: f.HorizWrap,
		NumPlayers: f.NumPlayers, PlayerNames: f.PlayerNames, Seed: f.Seed,
		TurnLimit: f.TurnLimit, CultureThresholdPct: f.CultureThresholdPct, DefaultTerrain: f.DefaultTerrain,
	})
	e := engine.NewEngine(gs)

	for i, rec := range f.Commands {
		live := e.State()
		if live.Turn != rec.Turn || live.CurrentPlayer() != rec.Player {
			return nil, &gameerrors.ReplayImportError{Kind: gameerrors.ErrCommandOutOfSync, Index: i}
		}
		if _, err := e.ApplyCommandChecked(rec.Player, rec.Command); err != nil {
			return nil, &gameerrors.ReplayImportError{Kind: gameerrors.ErrCommandFailed, Index: i, Detail: err.Error()}
		}
	}
	return e, nil
}
