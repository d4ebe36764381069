package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestHandleFoundCityRequiresSettlerType(t *testing.T) {
	gs := NewGame(newTestOpts())
	warriorID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, err := handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(warriorID), Name: "New Rome"})
	require.Error(t, err)
}

func TestHandleFoundCityRejectsImpassableTerrain(t *testing.T) {
	gs := NewGame(newTestOpts())
	idx := gs.Map.Index(hexmap.Hex{Q: 0, R: 0})
	gs.Tiles[idx].Terrain = ids.TerrainId(5) // mountains, impassable
	settlerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 1, MaxHP: 1, MovesLeft: 2})

	_, err := handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(settlerID), Name: "New Rome"})
	require.Error(t, err)
}

func TestHandleFoundCityRejectsTileAlreadyOccupiedByACity(t *testing.T) {
	gs := NewGame(newTestOpts())
	pos := hexmap.Hex{Q: 0, R: 0}
	gs.Cities.Insert(City{Name: "Existing", Owner: ids.PlayerId(1), Position: pos, Population: 1, Buildings: map[ids.BuildingId]struct{}{}})
	gs.TileAt(pos).SetCity(0, ids.PlayerId(1))

	settlerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: pos, HP: 1, MaxHP: 1, MovesLeft: 2})
	_, err := handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(settlerID), Name: "New Rome"})
	require.Error(t, err)
}

func TestHandleFoundCityConsumesSettlerAndClaimsBorders(t *testing.T) {
	gs := NewGame(newTestOpts())
	pos := hexmap.Hex{Q: 3, R: 3}
	settlerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: pos, HP: 1, MaxHP: 1, MovesLeft: 2})

	events, err := handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(settlerID), Name: "New Rome"})
	require.NoError(t, err)

	_, stillThere := gs.Units.Get(settlerID)
	assert.False(t, stillThere, "the settler is consumed when a city is founded")

	tile := gs.TileAt(pos)
	require.NotNil(t, tile.CityID)

	var cityID ids.CityId
	var sawFounded, sawBordersExpanded bool
	for _, ev := range events {
		switch e := ev.(type) {
		case CityFounded:
			sawFounded = true
			cityID = e.City
			assert.Equal(t, "New Rome", e.Name)
			assert.Equal(t, ids.PlayerId(0), e.Owner)
		case BordersExpanded:
			sawBordersExpanded = true
			assert.NotEmpty(t, e.NewTiles)
		}
	}
	assert.True(t, sawFounded)
	assert.True(t, sawBordersExpanded)

	city, ok := gs.Cities.Get(uint64(cityID))
	require.True(t, ok)
	assert.Equal(t, 1, city.Population)
	assert.Equal(t, pos, city.Position)
}

func TestHandleSetProductionRejectsUnknownUnitType(t *testing.T) {
	gs := NewGame(newTestOpts())
	cityID := gs.Cities.Insert(City{Name: "Capital", Owner: ids.PlayerId(0), Population: 1, Buildings: map[ids.BuildingId]struct{}{}})

	unknown := ids.UnitTypeId(999)
	_, err := handleSetProduction(gs, ids.PlayerId(0), SetProduction{City: ids.CityId(cityID), Item: ProductionItem{UnitType: &unknown}})
	require.Error(t, err)
}

func TestHandleSetProductionRejectsNonOwner(t *testing.T) {
	gs := NewGame(newTestOpts())
	cityID := gs.Cities.Insert(City{Name: "Capital", Owner: ids.PlayerId(1), Population: 1, Buildings: map[ids.BuildingId]struct{}{}})

	unitType := ids.UnitTypeId(3)
	_, err := handleSetProduction(gs, ids.PlayerId(0), SetProduction{City: ids.CityId(cityID), Item: ProductionItem{UnitType: &unitType}})
	require.Error(t, err)
}
