package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/backbay/imperium/internal/ids"
)

// binWriter mirrors rules.canonWriter's layout conventions: length-prefixed
// UTF-8 strings, little-endian fixed-width integers, explicit presence
// bytes for optionals (§4.E canonical binary encoding).
type binWriter struct{ buf bytes.Buffer }

func (w *binWriter) str(s string) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(s)))
	w.buf.Write(l[:])
	w.buf.WriteString(s)
}
func (w *binWriter) u8(v uint8)  { w.buf.WriteByte(v) }
func (w *binWriter) bl(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *binWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}
func (w *binWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
func (w *binWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}
func (w *binWriter) i32(v int32)  { w.u32(uint32(v)) }
func (w *binWriter) i64(v int64)  { w.u64(uint64(v)) }

func (w *binWriter) optU64(v *uint64) {
	if v != nil {
		w.bl(true)
		w.u64(*v)
	} else {
		w.bl(false)
	}
}
func (w *binWriter) optU16(v *uint16) {
	if v != nil {
		w.bl(true)
		w.u16(*v)
	} else {
		w.bl(false)
	}
}
func (w *binWriter) optPlayer(v *ids.PlayerId) {
	if v != nil {
		w.bl(true)
		w.u8(uint8(*v))
	} else {
		w.bl(false)
	}
}

// Encode writes the canonical binary form of s. Field order is fixed and
// matches Snapshot's declared order; this is the byte stream Checksum
// digests. The server's StateDelta/GameState messages carry snapshots as
// JSON, not in this form.
func Encode(s Snapshot) []byte {
	w := &binWriter{}
	w.i64(int64(s.Turn))
	w.u8(uint8(s.CurrentPlayer))
	w.i64(int64(s.MapWidth))
	w.i64(int64(s.MapHeight))
	w.bl(s.HorizWrap)

	w.u32(uint32(len(s.Tiles)))
	for _, t := range s.Tiles {
		w.i64(int64(t.Index))
		w.u16(uint16(t.Terrain))
		if t.Owner != nil {
			p := uint8(*t.Owner)
			w.bl(true)
			w.u8(p)
		} else {
			w.bl(false)
		}
		if t.CityID != nil {
			id := *t.CityID
			w.optU64(&id)
		} else {
			w.bl(false)
		}
		if t.Improvement != nil {
			w.bl(true)
			w.u16(uint16(t.Improvement.ID))
			w.u8(t.Improvement.Tier)
			w.i64(int64(t.Improvement.WorkedTurns))
			w.bl(t.Improvement.Pillaged)
		} else {
			w.bl(false)
		}
	}

	w.u32(uint32(len(s.Players)))
	for _, p := range s.Players {
		w.u8(uint8(p.ID))
		w.str(p.Name)
		w.bl(p.IsAI)
		w.i64(int64(p.Gold))
		w.i64(int64(p.SupplyUsed))
		w.i64(int64(p.SupplyCap))
		w.i64(int64(p.WarWeariness))
		w.i64(int64(p.Culture))
		w.i64(int64(p.AvailablePolicyPicks))
		w.u32(uint32(len(p.Policies)))
		for _, pol := range p.Policies {
			w.u16(uint16(pol))
		}
		if p.Government != nil {
			g := uint16(*p.Government)
			w.optU16(&g)
		} else {
			w.bl(false)
		}
		if p.Researching != nil {
			t := uint16(*p.Researching)
			w.optU16(&t)
		} else {
			w.bl(false)
		}
		w.i64(int64(p.ResearchProgress))
		w.u32(uint32(len(p.KnownTechs)))
		for _, t := range p.KnownTechs {
			w.u16(uint16(t))
		}
		w.bl(p.Eliminated)
	}

	w.u32(uint32(len(s.Units)))
	for _, u := range s.Units {
		w.u64(u.ID)
		w.u16(uint16(u.TypeID))
		w.u8(uint8(u.Owner))
		w.i32(u.Q)
		w.i32(u.R)
		w.i64(int64(u.HP))
		w.i64(int64(u.MaxHP))
		w.i64(int64(u.MovesLeft))
		w.i64(int64(u.VeteranLevel))
	}

	w.u32(uint32(len(s.Cities)))
	for _, c := range s.Cities {
		w.u64(c.ID)
		w.str(c.Name)
		w.u8(uint8(c.Owner))
		w.i32(c.Q)
		w.i32(c.R)
		w.i64(int64(c.Population))
		w.u32(uint32(len(c.Buildings)))
		for _, b := range c.Buildings {
			w.u16(uint16(b))
		}
	}

	w.u32(uint32(len(s.TradeRoutes)))
	for _, r := range s.TradeRoutes {
		w.u64(r.ID)
		w.u8(uint8(r.Owner))
		w.u64(r.From)
		w.u64(r.To)
	}

	w.u32(uint32(len(s.Chronicle)))
	for _, e := range s.Chronicle {
		w.u64(e.ID)
		w.i64(int64(e.Turn))
		w.i64(int64(e.Kind))
		w.u8(uint8(e.Subject))
		if e.Party != nil {
			p := *e.Party
			w.optPlayer(&p)
		} else {
			w.bl(false)
		}
		w.str(e.Detail)
	}

	w.buf.Write(s.RngState[:])
	w.u64(s.RulesHash)

	return w.buf.Bytes()
}

type binReader struct {
	buf []byte
	pos int
}

func (r *binReader) str() (string, error) {
	if r.pos+4 > len(r.buf) {
		return "", fmt.Errorf("snapshot: truncated string length")
	}
	l := int(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	if r.pos+l > len(r.buf) {
		return "", fmt.Errorf("snapshot: truncated string body")
	}
	s := string(r.buf[r.pos : r.pos+l])
	r.pos += l
	return s, nil
}
func (r *binReader) u8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("snapshot: truncated u8")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}
func (r *binReader) bl() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}
func (r *binReader) u16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, fmt.Errorf("snapshot: truncated u16")
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}
func (r *binReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("snapshot: truncated u32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}
func (r *binReader) u64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("snapshot: truncated u64")
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}
func (r *binReader) i32() (int32, error) { v, err := r.u32(); return int32(v), err }
func (r *binReader) i64() (int64, error) { v, err := r.u64(); return int64(v), err }

// Decode parses bytes produced by Encode. decode(encode(s)) == s (§8
// invariant 9).
func Decode(data []byte) (Snapshot, error) {
	r := &binReader{buf: data}
	var s Snapshot
	var err error

	turn, err := r.i64()
	if err != nil {
		return s, err
	}
	s.Turn = int(turn)
	cp, err := r.u8()
	if err != nil {
		return s, err
	}
	s.CurrentPlayer = ids.PlayerId(cp)
	w, err := r.i64()
	if err != nil {
		return s, err
	}
	s.MapWidth = int(w)
	h, err := r.i64()
	if err != nil {
		return s, err
	}
	s.MapHeight = int(h)
	s.HorizWrap, err = r.bl()
	if err != nil {
		return s, err
	}

	tileCount, err := r.u32()
	if err != nil {
		return s, err
	}
	s.Tiles = make([]TileSnapshot, tileCount)
	for i := range s.Tiles {
		idx, err := r.i64()
		if err != nil {
			return s, err
		}
		terrain, err := r.u16()
		if err != nil {
			return s, err
		}
		ts := TileSnapshot{Index: int(idx), Terrain: ids.TerrainId(terrain)}
		hasOwner, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasOwner {
			o, err := r.u8()
			if err != nil {
				return s, err
			}
			p := ids.PlayerId(o)
			ts.Owner = &p
		}
		hasCity, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasCity {
			cid, err := r.u64()
			if err != nil {
				return s, err
			}
			ts.CityID = &cid
		}
		hasImp, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasImp {
			impID, err := r.u16()
			if err != nil {
				return s, err
			}
			tier, err := r.u8()
			if err != nil {
				return s, err
			}
			worked, err := r.i64()
			if err != nil {
				return s, err
			}
			pillaged, err := r.bl()
			if err != nil {
				return s, err
			}
			ts.Improvement = &ImprovementSnapshot{ID: ids.ImprovementId(impID), Tier: tier, WorkedTurns: int(worked), Pillaged: pillaged}
		}
		s.Tiles[i] = ts
	}

	playerCount, err := r.u32()
	if err != nil {
		return s, err
	}
	for i := uint32(0); i < playerCount; i++ {
		var p PlayerSnapshot
		pid, err := r.u8()
		if err != nil {
			return s, err
		}
		p.ID = ids.PlayerId(pid)
		p.Name, err = r.str()
		if err != nil {
			return s, err
		}
		p.IsAI, err = r.bl()
		if err != nil {
			return s, err
		}
		gold, err := r.i64()
		if err != nil {
			return s, err
		}
		p.Gold = int(gold)
		used, err := r.i64()
		if err != nil {
			return s, err
		}
		p.SupplyUsed = int(used)
		cap, err := r.i64()
		if err != nil {
			return s, err
		}
		p.SupplyCap = int(cap)
		ww, err := r.i64()
		if err != nil {
			return s, err
		}
		p.WarWeariness = int(ww)
		culture, err := r.i64()
		if err != nil {
			return s, err
		}
		p.Culture = int(culture)
		picks, err := r.i64()
		if err != nil {
			return s, err
		}
		p.AvailablePolicyPicks = int(picks)
		policyCount, err := r.u32()
		if err != nil {
			return s, err
		}
		for j := uint32(0); j < policyCount; j++ {
			pol, err := r.u16()
			if err != nil {
				return s, err
			}
			p.Policies = append(p.Policies, ids.PolicyId(pol))
		}
		hasGov, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasGov {
			g, err := r.u16()
			if err != nil {
				return s, err
			}
			gov := ids.GovernmentId(g)
			p.Government = &gov
		}
		hasResearch, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasResearch {
			t, err := r.u16()
			if err != nil {
				return s, err
			}
			tech := ids.TechId(t)
			p.Researching = &tech
		}
		progress, err := r.i64()
		if err != nil {
			return s, err
		}
		p.ResearchProgress = int(progress)
		techCount, err := r.u32()
		if err != nil {
			return s, err
		}
		for j := uint32(0); j < techCount; j++ {
			t, err := r.u16()
			if err != nil {
				return s, err
			}
			p.KnownTechs = append(p.KnownTechs, ids.TechId(t))
		}
		p.Eliminated, err = r.bl()
		if err != nil {
			return s, err
		}
		s.Players = append(s.Players, p)
	}

	unitCount, err := r.u32()
	if err != nil {
		return s, err
	}
	for i := uint32(0); i < unitCount; i++ {
		var u UnitSnapshot
		u.ID, err = r.u64()
		if err != nil {
			return s, err
		}
		t, err := r.u16()
		if err != nil {
			return s, err
		}
		u.TypeID = ids.UnitTypeId(t)
		o, err := r.u8()
		if err != nil {
			return s, err
		}
		u.Owner = ids.PlayerId(o)
		u.Q, err = r.i32()
		if err != nil {
			return s, err
		}
		u.R, err = r.i32()
		if err != nil {
			return s, err
		}
		hp, err := r.i64()
		if err != nil {
			return s, err
		}
		u.HP = int(hp)
		maxHP, err := r.i64()
		if err != nil {
			return s, err
		}
		u.MaxHP = int(maxHP)
		moves, err := r.i64()
		if err != nil {
			return s, err
		}
		u.MovesLeft = int(moves)
		vet, err := r.i64()
		if err != nil {
			return s, err
		}
		u.VeteranLevel = int(vet)
		s.Units = append(s.Units, u)
	}

	cityCount, err := r.u32()
	if err != nil {
		return s, err
	}
	for i := uint32(0); i < cityCount; i++ {
		var c CitySnapshot
		c.ID, err = r.u64()
		if err != nil {
			return s, err
		}
		c.Name, err = r.str()
		if err != nil {
			return s, err
		}
		o, err := r.u8()
		if err != nil {
			return s, err
		}
		c.Owner = ids.PlayerId(o)
		c.Q, err = r.i32()
		if err != nil {
			return s, err
		}
		c.R, err = r.i32()
		if err != nil {
			return s, err
		}
		pop, err := r.i64()
		if err != nil {
			return s, err
		}
		c.Population = int(pop)
		buildingCount, err := r.u32()
		if err != nil {
			return s, err
		}
		for j := uint32(0); j < buildingCount; j++ {
			b, err := r.u16()
			if err != nil {
				return s, err
			}
			c.Buildings = append(c.Buildings, ids.BuildingId(b))
		}
		s.Cities = append(s.Cities, c)
	}

	routeCount, err := r.u32()
	if err != nil {
		return s, err
	}
	for i := uint32(0); i < routeCount; i++ {
		var route TradeRouteSnapshot
		route.ID, err = r.u64()
		if err != nil {
			return s, err
		}
		o, err := r.u8()
		if err != nil {
			return s, err
		}
		route.Owner = ids.PlayerId(o)
		route.From, err = r.u64()
		if err != nil {
			return s, err
		}
		route.To, err = r.u64()
		if err != nil {
			return s, err
		}
		s.TradeRoutes = append(s.TradeRoutes, route)
	}

	entryCount, err := r.u32()
	if err != nil {
		return s, err
	}
	for i := uint32(0); i < entryCount; i++ {
		var e ChronicleSnapshot
		e.ID, err = r.u64()
		if err != nil {
			return s, err
		}
		turn, err := r.i64()
		if err != nil {
			return s, err
		}
		e.Turn = int(turn)
		kind, err := r.i64()
		if err != nil {
			return s, err
		}
		e.Kind = int(kind)
		subj, err := r.u8()
		if err != nil {
			return s, err
		}
		e.Subject = ids.PlayerId(subj)
		hasParty, err := r.bl()
		if err != nil {
			return s, err
		}
		if hasParty {
			p, err := r.u8()
			if err != nil {
				return s, err
			}
			party := ids.PlayerId(p)
			e.Party = &party
		}
		e.Detail, err = r.str()
		if err != nil {
			return s, err
		}
		s.Chronicle = append(s.Chronicle, e)
	}

	if r.pos+32 > len(r.buf) {
		return s, fmt.Errorf("snapshot: truncated rng state")
	}
	copy(s.RngState[:], r.buf[r.pos:r.pos+32])
	r.pos += 32

	s.RulesHash, err = r.u64()
	if err != nil {
		return s, err
	}
	return s, nil
}
