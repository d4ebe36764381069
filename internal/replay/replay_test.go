package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

func newTestOpts() engine.NewGameOptions {
	return engine.NewGameOptions{
		Catalog: rules.DefaultCatalog(), MapWidth: 4, MapHeight: 4,
		NumPlayers: 2, PlayerNames: []string{"Atlas", "Borea"}, Seed: 7,
		TurnLimit: 100, CultureThresholdPct: 50, DefaultTerrain: ids.TerrainId(1),
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	opts := newTestOpts()
	gs := engine.NewGame(opts)
	e := engine.NewEngine(gs)
	tape := NewTape()

	events, err := e.ApplyCommandChecked(ids.PlayerId(0), engine.EndTurn{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	tape.Record(0, ids.PlayerId(0), engine.EndTurn{})

	f := Export(tape, opts, opts.Catalog.Hash())
	assert.Equal(t, 1, f.Version)
	assert.Len(t, f.Commands, 1)

	replayed, err := Import(f, opts.Catalog)
	require.NoError(t, err)
	assert.Equal(t, e.State().Turn, replayed.State().Turn)
	assert.Equal(t, e.State().CurrentPlayer(), replayed.State().CurrentPlayer())
}

func TestImportRejectsRulesHashMismatch(t *testing.T) {
	opts := newTestOpts()
	f := Export(NewTape(), opts, opts.Catalog.Hash()+1)

	_, err := Import(f, opts.Catalog)
	require.Error(t, err)
	rerr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	assert.Contains(t, rerr.Error(), "rules hash mismatch")
}

func TestImportRejectsOutOfSyncCommand(t *testing.T) {
	opts := newTestOpts()
	f := Export(NewTape(), opts, opts.Catalog.Hash())
	f.Commands = []RecordedCommand{{Turn: 5, Player: ids.PlayerId(0), Command: engine.EndTurn{}}}

	_, err := Import(f, opts.Catalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of sync")
}
