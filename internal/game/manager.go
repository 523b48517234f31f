package game

import (
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
)

// Manager owns the live Session behind a single lock and swaps in a fresh one
// when a game ends. The tick loop and every connection goroutine go through
// the Manager, which serializes all mutating access; the Session itself
// carries no locking.
type Manager struct {
	mu      sync.Mutex
	session *Session

	cfg    config.Game
	events *EventLog
	seed   func() *rand.Rand
}

// NewManager creates a manager with a fresh empty session. The events log may
// be nil. The optional seed function produces the RNG for each new session;
// by default sessions are seeded from the wall clock.
func NewManager(cfg config.Game, events *EventLog) *Manager {
	m := &Manager{
		cfg:    cfg,
		events: events,
		seed: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	m.session = m.newSession()
	return m
}

// SetSeed overrides the per-session RNG source. Intended for tests.
func (m *Manager) SetSeed(seed func() *rand.Rand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed = seed
	m.session = m.newSession()
}

func (m *Manager) newSession() *Session {
	s := NewSession(m.cfg, m.seed())
	s.events = m.events
	return s
}

// Join admits a player into the current session's lobby. Returns the created
// player (copied) and false if the name is already taken.
func (m *Manager) Join(name string) (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.AddPlayer(name) {
		return Player{}, false
	}
	p := *m.session.Player(name)

	if m.events != nil {
		m.events.EmitSimple(EventTypePlayerJoin, name, JoinPayload{
			Name:   name,
			ID:     p.ID,
			Shape:  p.Shape.String(),
			SpawnX: p.Pos.X,
			SpawnY: p.Pos.Y,
		})
	}
	return p, true
}

// FallbackName builds a default player name from the current player count,
// used when a join message carries no name.
func (m *Manager) FallbackName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fallbackName(m.session.PlayerCount())
}

// Leave removes a player from the current session. Idempotent.
func (m *Manager) Leave(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Player(name) == nil {
		return
	}
	m.session.RemovePlayer(name)
	if m.events != nil {
		m.events.EmitSimple(EventTypePlayerLeave, name, nil)
	}
}

// Start begins the game if the lobby allows it. Returns true when the game
// transitioned to started on this call.
func (m *Manager) Start(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.StartGame(now) {
		return false
	}
	if m.events != nil {
		m.events.EmitSimple(EventTypeGameStart, "", GameStartPayload{Players: m.session.PlayerCount()})
	}
	return true
}

// Move applies one movement input for the named player.
func (m *Manager) Move(name string, dir Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.UpdatePlayerPosition(name, dir)
}

// LobbyStatus returns the lobby size, whether enough players are waiting to
// start, and whether the game already started.
func (m *Manager) LobbyStatus() (count int, canStart, started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.LobbyCount(), m.session.CanStartGame(), m.session.Started()
}

// Roster returns every current player keyed by name (copies).
func (m *Manager) Roster() map[string]Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := make(map[string]Player, m.session.PlayerCount())
	for name, p := range m.session.players {
		roster[name] = *p
	}
	return roster
}

// Snapshot returns the current state view without advancing the simulation.
func (m *Manager) Snapshot(now time.Time) StateSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Snapshot(now)
}

// Advance runs one simulation tick and returns the resulting snapshot. When
// the game duration has fully elapsed it computes the final result, swaps in
// a fresh empty session (discarding all players, coins and scores — clients
// must re-join the new lobby) and returns a non-nil GameResult exactly once
// per finished game.
func (m *Manager) Advance(now time.Time) (StateSnapshot, *GameResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session.Tick(now)
	snap := m.session.Snapshot(now)

	if snap.GameStarted && snap.TimeRemaining != nil && *snap.TimeRemaining == 0 {
		result := &GameResult{
			Winner: m.session.Winner(),
			Scores: m.session.Scores(),
		}
		if m.events != nil {
			m.events.EmitSimple(EventTypeGameEnd, "", GameEndPayload{
				Winner: result.Winner,
				Scores: result.Scores,
			})
		}
		log.Printf("🏁 Game over, winner: %q — resetting session", result.Winner)
		m.session = m.newSession()
		return snap, result
	}

	return snap, nil
}

func fallbackName(playerCount int) string {
	return "Player" + strconv.Itoa(playerCount)
}
