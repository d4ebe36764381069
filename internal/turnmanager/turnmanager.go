// Package turnmanager implements the turn-cycling modes and per-turn
// timers of §4.H: Sequential mode in full, Dynamic mode as a documented
// pass-through to Sequential (the spec names it a design placeholder; see
// DESIGN.md).
package turnmanager

import (
	"time"

	"github.com/backbay/imperium/internal/ids"
)

type Mode int

const (
	ModeSequential Mode = iota
	ModeDynamic
)

// TimerParams scales the per-turn clock by board complexity (§4.H).
type TimerParams struct {
	BaseSeconds    int
	MinSeconds     int
	MaxSeconds     int
	PerUnitSeconds int
	PerCitySeconds int
}

// Manager tracks whose turn it is and how much time remains on it.
// Dynamic mode is accepted as a configuration value but always behaves as
// Sequential (§9 Open Question, resolved in DESIGN.md).
type Manager struct {
	Mode   Mode
	Params TimerParams

	playerOrder []ids.PlayerId
	active      int
	turn        int

	deadline     time.Time
	warnedAt30   bool
	warnedAt10   bool
}

func NewManager(mode Mode, params TimerParams, playerOrder []ids.PlayerId) *Manager {
	return &Manager{
		Mode:        mode,
		Params:      params,
		playerOrder: append([]ids.PlayerId(nil), playerOrder...),
	}
}

func (m *Manager) ActivePlayer() ids.PlayerId { return m.playerOrder[m.active] }
func (m *Manager) Turn() int                  { return m.turn }

// duration computes remaining = base + units*a + cities*b clamped to
// [min, max] (§4.H).
func (m *Manager) duration(units, cities int) time.Duration {
	secs := m.Params.BaseSeconds + units*m.Params.PerUnitSeconds + cities*m.Params.PerCitySeconds
	if secs < m.Params.MinSeconds {
		secs = m.Params.MinSeconds
	}
	if secs > m.Params.MaxSeconds {
		secs = m.Params.MaxSeconds
	}
	return time.Duration(secs) * time.Second
}

// StartTurn arms the timer for the currently active player, using that
// player's unit/city counts to scale it.
func (m *Manager) StartTurn(now time.Time, units, cities int) time.Duration {
	d := m.duration(units, cities)
	m.deadline = now.Add(d)
	m.warnedAt30 = false
	m.warnedAt10 = false
	return d
}

// Advance moves to the next seat in id order; on wraparound it increments
// the turn counter (§4.H Sequential). Dynamic mode reuses this path
// unchanged — see package doc.
func (m *Manager) Advance() {
	m.active++
	if m.active >= len(m.playerOrder) {
		m.active = 0
		m.turn++
	}
}

// TimeRemaining reports how much of the active player's turn clock is left.
func (m *Manager) TimeRemaining(now time.Time) time.Duration {
	if m.deadline.IsZero() {
		return 0
	}
	d := m.deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CheckWarnings returns the threshold (30 or 10 seconds) that was just
// crossed for the active player's turn, firing at most once per boundary
// per (player, turn) (§4.H).
func (m *Manager) CheckWarnings(now time.Time) (seconds int, fired bool) {
	remaining := m.TimeRemaining(now)
	if !m.warnedAt30 && remaining < 30*time.Second && remaining > 0 {
		m.warnedAt30 = true
		return 30, true
	}
	if !m.warnedAt10 && remaining < 10*time.Second && remaining > 0 {
		m.warnedAt10 = true
		return 10, true
	}
	return 0, false
}

// Expired reports whether the active player's clock has run out; the
// server treats this the same as the active player submitting [EndTurn]
// with checksum 0 (§4.I Failure & recovery).
func (m *Manager) Expired(now time.Time) bool {
	return !m.deadline.IsZero() && now.After(m.deadline)
}
