package replaystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/rules"
)

func newTestFile() replay.File {
	opts := engine.NewGameOptions{
		Catalog: rules.DefaultCatalog(), MapWidth: 4, MapHeight: 4,
		NumPlayers: 2, PlayerNames: []string{"Atlas", "Borea"}, Seed: 7,
		TurnLimit: 100, CultureThresholdPct: 50, DefaultTerrain: ids.TerrainId(1),
	}
	tape := replay.NewTape()
	tape.Record(0, ids.PlayerId(0), engine.EndTurn{})
	tape.Record(0, ids.PlayerId(1), engine.EndTurn{})
	return replay.Export(tape, opts, opts.Catalog.Hash())
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := newTestFile()

	id, err := s.Save(ctx, "ABCD", f, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.Version, got.Version)
	assert.Equal(t, f.RulesHash, got.RulesHash)
	assert.Len(t, got.Commands, 2)
	assert.Equal(t, f.PlayerNames, got.PlayerNames)
}

func TestLoadUnknownIDFails(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), 999)
	require.Error(t, err)
}

func TestListByGameCodeOrdersMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := newTestFile()

	_, err := s.Save(ctx, "ABCD", f, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	secondID, err := s.Save(ctx, "ABCD", f, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = s.Save(ctx, "WXYZ", f, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	list, err := s.ListByGameCode(ctx, "ABCD")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, secondID, list[0].ID)
}

func TestListRecentAcrossGameCodes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := newTestFile()

	_, err := s.Save(ctx, "ABCD", f, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = s.Save(ctx, "WXYZ", f, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	list, err := s.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "WXYZ", list[0].GameCode)
}
