// Package ids holds the newtype identifier wrappers shared across the
// engine, rules catalog, entity store and network server (§3 of the spec).
package ids

type (
	PlayerId     uint8
	UnitId       uint64
	CityId       uint64
	TradeRouteId uint64
	TreatyId     uint64

	TechId        uint16
	UnitTypeId    uint16
	BuildingId    uint16
	ImprovementId uint16
	PolicyId      uint16
	GovernmentId  uint16
	TerrainId     uint16
)

// UnknownTerrain is substituted for redacted/unexplored tile terrain in
// filtered snapshots (§4.I Snapshot filtering).
const UnknownTerrain TerrainId = 0xFFFF
