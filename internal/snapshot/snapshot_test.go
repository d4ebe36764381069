package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

func newTestGame() *engine.GameState {
	return engine.NewGame(engine.NewGameOptions{
		Catalog: rules.DefaultCatalog(), MapWidth: 4, MapHeight: 4,
		NumPlayers: 2, PlayerNames: []string{"Atlas", "Borea"}, Seed: 7,
		TurnLimit: 100, CultureThresholdPct: 50, DefaultTerrain: ids.TerrainId(1),
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	gs := newTestGame()
	s := FromEngine(gs)
	encoded := Encode(s)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestChecksumStableAndSensitiveToContent(t *testing.T) {
	gs := newTestGame()
	s1 := FromEngine(gs)
	s2 := FromEngine(gs)
	assert.Equal(t, Checksum(s1), Checksum(s2))

	gs.Turn = 5
	s3 := FromEngine(gs)
	assert.NotEqual(t, Checksum(s1), Checksum(s3))
}

func TestJSONRoundTrip(t *testing.T) {
	gs := newTestGame()
	s := FromEngine(gs)
	data, err := EncodeJSON(s)
	require.NoError(t, err)
	decoded, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s.Turn, decoded.Turn)
	assert.Equal(t, s.RulesHash, decoded.RulesHash)
}
