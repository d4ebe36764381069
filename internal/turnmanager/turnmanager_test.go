package turnmanager_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/turnmanager"
)

func newManager() *turnmanager.Manager {
	return turnmanager.NewManager(turnmanager.ModeSequential, turnmanager.TimerParams{
		BaseSeconds: 30, MinSeconds: 20, MaxSeconds: 120, PerUnitSeconds: 2, PerCitySeconds: 5,
	}, []ids.PlayerId{0, 1, 2})
}

func TestAdvanceWrapsAndIncrementsTurn(t *testing.T) {
	m := newManager()
	assert.Equal(t, ids.PlayerId(0), m.ActivePlayer())

	m.Advance()
	assert.Equal(t, ids.PlayerId(1), m.ActivePlayer())
	assert.Equal(t, 0, m.Turn())

	m.Advance()
	m.Advance()
	assert.Equal(t, ids.PlayerId(0), m.ActivePlayer())
	assert.Equal(t, 1, m.Turn())
}

func TestDurationClampsToBounds(t *testing.T) {
	m := newManager()
	now := time.Now()

	d := m.StartTurn(now, 0, 0)
	assert.Equal(t, 30*time.Second, d)

	d = m.StartTurn(now, 100, 100)
	assert.Equal(t, 120*time.Second, d)
}

func TestExpiredAfterDeadline(t *testing.T) {
	m := newManager()
	now := time.Now()
	m.StartTurn(now, 0, 0)

	assert.False(t, m.Expired(now))
	assert.True(t, m.Expired(now.Add(31*time.Second)))
}

func TestCheckWarningsFireOncePerBoundary(t *testing.T) {
	m := newManager()
	now := time.Now()
	m.StartTurn(now, 0, 0)

	_, fired := m.CheckWarnings(now)
	assert.False(t, fired)

	secs, fired := m.CheckWarnings(now.Add(5 * time.Second))
	assert.True(t, fired)
	assert.Equal(t, 30, secs)

	_, fired = m.CheckWarnings(now.Add(5 * time.Second))
	assert.False(t, fired)

	secs, fired = m.CheckWarnings(now.Add(21 * time.Second))
	assert.True(t, fired)
	assert.Equal(t, 10, secs)
}
