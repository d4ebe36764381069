package playermanager_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/playermanager"
)

func TestAddPlayerAssignsHostToFirstNonObserver(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Minute)

	seat, reason := m.AddPlayer("c1", "Atlas", false)
	require.Equal(t, playermanager.RejectNone, reason)
	assert.True(t, seat.Host)

	seat2, reason := m.AddPlayer("c2", "Borea", false)
	require.Equal(t, playermanager.RejectNone, reason)
	assert.False(t, seat2.Host)
}

func TestAddPlayerRejectsGameFull(t *testing.T) {
	m := playermanager.NewManager(2, 1, 2, time.Minute)
	_, reason := m.AddPlayer("c1", "Atlas", false)
	require.Equal(t, playermanager.RejectNone, reason)

	_, reason = m.AddPlayer("c2", "Borea", false)
	assert.Equal(t, playermanager.RejectGameFull, reason)
}

func TestAddPlayerRejectsDuplicateName(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Minute)
	_, reason := m.AddPlayer("c1", "Atlas", false)
	require.Equal(t, playermanager.RejectNone, reason)

	_, reason = m.AddPlayer("c2", "Atlas", false)
	assert.Equal(t, playermanager.RejectAlreadyExists, reason)
}

func TestReconnectRebindsClientID(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Minute)
	seat, _ := m.AddPlayer("c1", "Atlas", false)
	token := seat.ReconnectToken

	m.Disconnect("c1")
	rebound, ok := m.Reconnect("c2", token)
	require.True(t, ok)
	assert.Equal(t, seat.Player, rebound.Player)
	assert.True(t, rebound.Connected)

	_, found := m.SeatByClient("c2")
	assert.True(t, found)
}

func TestReconnectRejectsWrongToken(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Minute)
	m.AddPlayer("c1", "Atlas", false)
	m.Disconnect("c1")

	_, ok := m.Reconnect("c2", uuid.New())
	assert.False(t, ok)
}

func TestExpireDisconnectsTriggersAITakeoverAndHostElection(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Millisecond)
	host, _ := m.AddPlayer("c1", "Atlas", false)
	other, _ := m.AddPlayer("c2", "Borea", false)
	require.True(t, host.Host)

	m.Disconnect("c1")
	time.Sleep(2 * time.Millisecond)

	flipped := m.ExpireDisconnects(time.Now())
	require.Len(t, flipped, 1)
	assert.True(t, flipped[0].IsAI)
	assert.True(t, other.Host)
}

func TestAllowRateLimitsUnknownClient(t *testing.T) {
	m := playermanager.NewManager(2, 4, 2, time.Minute)
	assert.False(t, m.Allow("ghost"))
}
