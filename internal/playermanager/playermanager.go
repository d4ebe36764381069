// Package playermanager maintains seats, observers, and client connections
// for one game (§4.G), generalized from the teacher's internal/lobby
// Service shape (CreateGame/JoinGame/StartGame/IsHost) into a single
// in-process collaborator the network server calls directly rather than a
// repository-per-concern split backed by a database.
package playermanager

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/backbay/imperium/internal/ids"
)

// JoinRejectReason enumerates why add_player failed (§4.G).
type JoinRejectReason int

const (
	RejectNone JoinRejectReason = iota
	RejectGameFull
	RejectObserversFull
	RejectGameInProgress
	RejectAlreadyExists
	RejectInvalidReconnectToken
)

// Seat is one occupied player slot or observer slot.
type Seat struct {
	Player         ids.PlayerId
	Name           string
	Observer       bool
	ClientID       string
	ReconnectToken uuid.UUID
	Ready          bool
	Connected      bool
	IsAI           bool
	Host           bool

	limiter       *rate.Limiter
	disconnectedAt time.Time
}

// Manager owns the join/disconnect/reconnect lifecycle for one game.
type Manager struct {
	MinPlayers      int
	MaxPlayers      int
	MaxObservers    int
	GraceDuration   time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int

	GameInProgress bool

	seats       map[ids.PlayerId]*Seat
	nextPlayer  ids.PlayerId
	nextObserver ids.PlayerId
	clientSeat  map[string]ids.PlayerId
}

// observerIDBase separates observer seat ids from player seat ids:
// non-observer seats must land on the contiguous 0..NumPlayers-1 range the
// engine assigns internally (§4.G), so observers are numbered starting
// well above any realistic player count instead of sharing that counter.
const observerIDBase ids.PlayerId = 200

func NewManager(minPlayers, maxPlayers, maxObservers int, grace time.Duration) *Manager {
	return &Manager{
		MinPlayers:      minPlayers,
		MaxPlayers:      maxPlayers,
		MaxObservers:    maxObservers,
		GraceDuration:   grace,
		RateLimitPerSec: 20,
		RateLimitBurst:  40,
		seats:           map[ids.PlayerId]*Seat{},
		clientSeat:      map[string]ids.PlayerId{},
	}
}

func (m *Manager) playerCount() int {
	n := 0
	for _, s := range m.seats {
		if !s.Observer {
			n++
		}
	}
	return n
}

func (m *Manager) observerCount() int {
	n := 0
	for _, s := range m.seats {
		if s.Observer {
			n++
		}
	}
	return n
}

func (m *Manager) nameTaken(name string) bool {
	for _, s := range m.seats {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Reconnect rebinds clientID to the seat holding token, if any is
// disconnected and the token matches (§4.G step 1).
func (m *Manager) Reconnect(clientID string, token uuid.UUID) (*Seat, bool) {
	for _, s := range m.seats {
		if s.ReconnectToken == token && !s.Connected {
			delete(m.clientSeat, s.ClientID)
			s.ClientID = clientID
			s.Connected = true
			s.IsAI = false
			s.disconnectedAt = time.Time{}
			m.clientSeat[clientID] = s.Player
			return s, true
		}
	}
	return nil, false
}

// AddPlayer assigns a fresh seat to a new client (§4.G step 2).
func (m *Manager) AddPlayer(clientID, name string, observer bool) (*Seat, JoinRejectReason) {
	if m.GameInProgress {
		return nil, RejectGameInProgress
	}
	if m.nameTaken(name) {
		return nil, RejectAlreadyExists
	}
	if observer {
		if m.observerCount() >= m.MaxObservers {
			return nil, RejectObserversFull
		}
	} else if m.playerCount() >= m.MaxPlayers {
		return nil, RejectGameFull
	}

	var pid ids.PlayerId
	if observer {
		pid = observerIDBase + m.nextObserver
		m.nextObserver++
	} else {
		pid = m.nextPlayer
		m.nextPlayer++
	}

	seat := &Seat{
		Player:         pid,
		Name:           name,
		Observer:       observer,
		ClientID:       clientID,
		ReconnectToken: uuid.New(),
		Ready:          false,
		Connected:      true,
		Host:           !observer && m.firstNonObserver(),
		limiter:        rate.NewLimiter(rate.Limit(m.RateLimitPerSec), m.RateLimitBurst),
	}
	m.seats[pid] = seat
	m.clientSeat[clientID] = pid
	return seat, RejectNone
}

func (m *Manager) firstNonObserver() bool {
	for _, s := range m.seats {
		if !s.Observer {
			return false
		}
	}
	return true
}

func (m *Manager) SeatByClient(clientID string) (*Seat, bool) {
	pid, ok := m.clientSeat[clientID]
	if !ok {
		return nil, false
	}
	s, ok := m.seats[pid]
	return s, ok
}

func (m *Manager) SeatByPlayer(p ids.PlayerId) (*Seat, bool) {
	s, ok := m.seats[p]
	return s, ok
}

func (m *Manager) Seats() []*Seat {
	out := make([]*Seat, 0, len(m.seats))
	for _, s := range m.seats {
		out = append(out, s)
	}
	return out
}

// IsHost reports whether clientID occupies the host seat.
func (m *Manager) IsHost(clientID string) bool {
	s, ok := m.SeatByClient(clientID)
	return ok && s.Host
}

// Disconnect marks a seat's connection dropped and starts its grace timer;
// callers poll ExpireDisconnects to apply AI takeover once the grace period
// elapses (§4.G).
func (m *Manager) Disconnect(clientID string) (*Seat, bool) {
	s, ok := m.SeatByClient(clientID)
	if !ok {
		return nil, false
	}
	s.Connected = false
	s.disconnectedAt = time.Now()
	delete(m.clientSeat, clientID)
	return s, true
}

// ExpireDisconnects converts any seat whose grace period has elapsed into
// an AI-controlled seat, electing a new host if the host seat was taken
// over. Returns the seats that just flipped to AI this call.
func (m *Manager) ExpireDisconnects(now time.Time) []*Seat {
	var flipped []*Seat
	for _, s := range m.seats {
		if s.Connected || s.IsAI || s.disconnectedAt.IsZero() {
			continue
		}
		if now.Sub(s.disconnectedAt) >= m.GraceDuration {
			s.IsAI = true
			flipped = append(flipped, s)
			if s.Host {
				m.electNextHost(s.Player)
			}
		}
	}
	return flipped
}

func (m *Manager) electNextHost(vacated ids.PlayerId) {
	m.seats[vacated].Host = false
	var candidate *Seat
	for _, s := range m.seats {
		if s.Player == vacated || s.Observer || !s.Connected {
			continue
		}
		if candidate == nil || s.Player < candidate.Player {
			candidate = s
		}
	}
	if candidate != nil {
		candidate.Host = true
	}
}

// Allow applies the per-client token-bucket rate limit to a command
// message (§4.G: "rate limiting: token bucket per client").
func (m *Manager) Allow(clientID string) bool {
	s, ok := m.SeatByClient(clientID)
	if !ok {
		return false
	}
	return s.limiter.Allow()
}

func (m *Manager) SetReady(clientID string, ready bool) error {
	s, ok := m.SeatByClient(clientID)
	if !ok {
		return fmt.Errorf("unknown client %s", clientID)
	}
	s.Ready = ready
	return nil
}
