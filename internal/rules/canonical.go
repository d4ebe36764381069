package rules

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/backbay/imperium/internal/ids"
)

// canonWriter accumulates the canonical byte stream: length-prefixed UTF-8
// strings, little-endian integers, tagged discriminants for variants (§4.B).
type canonWriter struct{ buf bytes.Buffer }

func (w *canonWriter) str(s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	w.buf.Write(lenBuf[:])
	w.buf.WriteString(s)
}

func (w *canonWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *canonWriter) bl(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *canonWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}
func (w *canonWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
func (w *canonWriter) i32(v int32) { w.u32(uint32(v)) }
func (w *canonWriter) i64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}
func (w *canonWriter) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *canonWriter) yields(y Yields) {
	w.i64(int64(y.Food))
	w.i64(int64(y.Prod))
	w.i64(int64(y.Gold))
	w.i64(int64(y.Science))
	w.i64(int64(y.Culture))
}

// unenumeratedTag is used for any Effect/Requirement variant not handled by
// the type switches below: tag 255, then a length-prefixed debug string.
// This is the explicit, stable escape hatch called out in §9 — it must
// never silently change shape across versions.
const unenumeratedTag = 255

func (w *canonWriter) effect(e Effect) {
	switch v := e.(type) {
	case EffectYieldBonus:
		w.u8(v.effectTag())
		w.str(v.Yield)
		w.f64(v.Amount)
	case EffectUnlockUnit:
		w.u8(v.effectTag())
		w.u16(uint16(v.UnitType))
	case EffectUnlockImprovement:
		w.u8(v.effectTag())
		w.u16(uint16(v.Improvement))
	case EffectAdminBonus:
		w.u8(v.effectTag())
		w.i64(int64(v.Amount))
	case EffectWarWearinessReduction:
		w.u8(v.effectTag())
		w.i64(int64(v.Amount))
	default:
		w.u8(unenumeratedTag)
		w.str(fmt.Sprintf("%#v", e))
	}
}

func (w *canonWriter) requirement(r Requirement) {
	switch v := r.(type) {
	case RequireTech:
		w.u8(v.requirementTag())
		w.u16(uint16(v.Tech))
	case RequirePolicy:
		w.u8(v.requirementTag())
		w.u16(uint16(v.Policy))
	case RequireGovernment:
		w.u8(v.requirementTag())
		w.u16(uint16(v.Government))
	case RequireBuildingInCity:
		w.u8(v.requirementTag())
		w.u16(uint16(v.Building))
	default:
		w.u8(unenumeratedTag)
		w.str(fmt.Sprintf("%#v", r))
	}
}

func sortedTerrainIds(m map[ids.TerrainId]TerrainDef) []ids.TerrainId {
	out := make([]ids.TerrainId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedUnitTypeIds(m map[ids.UnitTypeId]UnitTypeDef) []ids.UnitTypeId {
	out := make([]ids.UnitTypeId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedBuildingIds(m map[ids.BuildingId]BuildingDef) []ids.BuildingId {
	out := make([]ids.BuildingId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedTechIds(m map[ids.TechId]TechDef) []ids.TechId {
	out := make([]ids.TechId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedImprovementIds(m map[ids.ImprovementId]ImprovementDef) []ids.ImprovementId {
	out := make([]ids.ImprovementId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedPolicyIds(m map[ids.PolicyId]PolicyDef) []ids.PolicyId {
	out := make([]ids.PolicyId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func sortedGovernmentIds(m map[ids.GovernmentId]GovernmentDef) []ids.GovernmentId {
	out := make([]ids.GovernmentId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Canonicalize writes the fixed-order, tagged-discriminant byte stream that
// Hash() digests (§4.B).
func (c *Catalog) Canonicalize() []byte {
	w := &canonWriter{}

	for _, id := range sortedTerrainIds(c.Terrains) {
		t := c.Terrains[id]
		w.u16(uint16(id))
		w.str(t.Name)
		w.yields(t.Yields)
		w.i64(int64(t.MoveCost))
		w.f64(t.DefenseBonus)
		w.bl(t.Impassable)
	}
	for _, id := range sortedUnitTypeIds(c.UnitTypes) {
		u := c.UnitTypes[id]
		w.u16(uint16(id))
		w.str(u.Name)
		w.str(u.Class)
		w.i64(int64(u.ProdCost))
		w.i64(int64(u.Attack))
		w.i64(int64(u.Defense))
		w.i64(int64(u.Moves))
		w.i64(int64(u.HP))
		w.i64(int64(u.Firepower))
		w.i64(int64(u.SupplyCost))
		if u.TechRequired != nil {
			w.bl(true)
			w.u16(uint16(*u.TechRequired))
		} else {
			w.bl(false)
		}
		w.bl(u.CanFoundCity)
		w.bl(u.IsWorker)
		w.bl(u.CanFortify)
	}
	for _, id := range sortedBuildingIds(c.Buildings) {
		b := c.Buildings[id]
		w.u16(uint16(id))
		w.str(b.Name)
		w.i64(int64(b.Cost))
		w.i64(int64(b.Maintenance))
		w.i64(int64(b.Admin))
		w.u32(uint32(len(b.Effects)))
		for _, e := range b.Effects {
			w.effect(e)
		}
		w.u32(uint32(len(b.Requirements)))
		for _, r := range b.Requirements {
			w.requirement(r)
		}
		if b.TechRequired != nil {
			w.bl(true)
			w.u16(uint16(*b.TechRequired))
		} else {
			w.bl(false)
		}
	}
	for _, id := range sortedTechIds(c.Techs) {
		t := c.Techs[id]
		w.u16(uint16(id))
		w.str(t.Name)
		w.i64(int64(t.Cost))
		w.str(t.Era)
		prereqs := make([]ids.TechId, 0, len(t.Prerequisites))
		for p := range t.Prerequisites {
			prereqs = append(prereqs, p)
		}
		sort.Slice(prereqs, func(i, j int) bool { return prereqs[i] < prereqs[j] })
		w.u32(uint32(len(prereqs)))
		for _, p := range prereqs {
			w.u16(uint16(p))
		}
	}
	for _, id := range sortedImprovementIds(c.Improvements) {
		im := c.Improvements[id]
		w.u16(uint16(id))
		w.str(im.Name)
		w.u32(uint32(len(im.AllowedTerrains)))
		for _, t := range im.AllowedTerrains {
			w.u16(uint16(t))
		}
		w.i64(int64(im.BuildTurns))
		w.i64(int64(im.RepairTurns))
		w.u32(uint32(len(im.Tiers)))
		for _, tier := range im.Tiers {
			w.yields(tier.Yields)
			w.i64(int64(tier.WorkedTurnsToMature))
		}
	}
	for _, id := range sortedPolicyIds(c.Policies) {
		p := c.Policies[id]
		w.u16(uint16(id))
		w.str(p.Name)
		w.u32(uint32(len(p.Effects)))
		for _, e := range p.Effects {
			w.effect(e)
		}
		w.u32(uint32(len(p.Requirements)))
		for _, r := range p.Requirements {
			w.requirement(r)
		}
	}
	for _, id := range sortedGovernmentIds(c.Governments) {
		g := c.Governments[id]
		w.u16(uint16(id))
		w.str(g.Name)
		w.i64(int64(g.AdminRating))
	}

	return w.buf.Bytes()
}
