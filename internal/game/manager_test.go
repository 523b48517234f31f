package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
)

func newTestManager() *Manager {
	m := NewManager(config.DefaultGame(), nil)
	m.SetSeed(func() *rand.Rand { return rand.New(rand.NewSource(1)) })
	return m
}

// TestManagerJoinDuplicate tests that the manager surfaces name conflicts
func TestManagerJoinDuplicate(t *testing.T) {
	m := newTestManager()

	p, ok := m.Join("alice")
	if !ok {
		t.Fatal("first join should succeed")
	}
	if p.Name != "alice" || p.ID != 0 || p.Shape != ShapeCircle {
		t.Errorf("joined player = %+v", p)
	}

	if _, ok := m.Join("alice"); ok {
		t.Error("duplicate join should fail")
	}
}

// TestManagerFallbackName tests default names derived from the player count
func TestManagerFallbackName(t *testing.T) {
	m := newTestManager()

	if got := m.FallbackName(); got != "Player0" {
		t.Errorf("FallbackName = %q, want Player0", got)
	}
	m.Join("alice")
	if got := m.FallbackName(); got != "Player1" {
		t.Errorf("FallbackName = %q, want Player1", got)
	}
}

// TestManagerLobbyStatus tests the lobby view through the game lifecycle
func TestManagerLobbyStatus(t *testing.T) {
	m := newTestManager()

	if count, canStart, started := m.LobbyStatus(); count != 0 || canStart || started {
		t.Errorf("empty lobby status = (%d, %v, %v)", count, canStart, started)
	}

	m.Join("alice")
	m.Join("bob")
	if count, canStart, started := m.LobbyStatus(); count != 2 || !canStart || started {
		t.Errorf("two-player lobby status = (%d, %v, %v)", count, canStart, started)
	}

	if !m.Start(time.Now()) {
		t.Fatal("Start failed")
	}
	if _, _, started := m.LobbyStatus(); !started {
		t.Error("started should be true after Start")
	}
	if m.Start(time.Now()) {
		t.Error("second Start should fail")
	}
}

// TestManagerLeaveIdempotent tests repeated leaves
func TestManagerLeaveIdempotent(t *testing.T) {
	m := newTestManager()
	m.Join("alice")

	m.Leave("alice")
	m.Leave("alice")
	m.Leave("ghost")

	if count, _, _ := m.LobbyStatus(); count != 0 {
		t.Errorf("lobby count = %d, want 0", count)
	}
}

// TestManagerRoster tests that roster entries are copies
func TestManagerRoster(t *testing.T) {
	m := newTestManager()
	m.Join("alice")

	roster := m.Roster()
	if len(roster) != 1 {
		t.Fatalf("roster size = %d, want 1", len(roster))
	}

	p := roster["alice"]
	p.Score = 999
	if got := m.Roster()["alice"].Score; got != 0 {
		t.Errorf("mutating a roster copy changed live state: score = %d", got)
	}
}

// TestManagerAdvanceGameEnd tests end detection, one-shot result and session reset
func TestManagerAdvanceGameEnd(t *testing.T) {
	m := newTestManager()
	cfg := config.DefaultGame()

	m.Join("alice")
	m.Join("bob")

	t0 := time.Now()
	if !m.Start(t0) {
		t.Fatal("Start failed")
	}

	// Mid-game tick: no result, state flows
	snap, result := m.Advance(t0.Add(time.Second))
	if result != nil {
		t.Fatal("mid-game Advance returned a result")
	}
	if !snap.GameStarted {
		t.Error("mid-game snapshot should report a started game")
	}

	// Duration elapsed: exactly one result
	snap, result = m.Advance(t0.Add(cfg.GameDuration))
	if result == nil {
		t.Fatal("Advance at full duration should return a result")
	}
	if result.Winner == "" {
		t.Error("result should name a winner")
	}
	if len(result.Scores) != 2 {
		t.Errorf("result has %d scores, want 2", len(result.Scores))
	}
	if snap.TimeRemaining == nil || *snap.TimeRemaining != 0 {
		t.Errorf("final snapshot TimeRemaining = %v, want 0", snap.TimeRemaining)
	}

	// The session was replaced: empty lobby, no second result
	snap, result = m.Advance(t0.Add(cfg.GameDuration + time.Second))
	if result != nil {
		t.Fatal("result must be returned exactly once per game")
	}
	if snap.GameStarted {
		t.Error("fresh session should not be started")
	}
	if snap.LobbyCount != 0 || len(snap.Players) != 0 {
		t.Errorf("fresh session has %d lobby, %d players", snap.LobbyCount, len(snap.Players))
	}

	// Old names are free again in the new session
	if _, ok := m.Join("alice"); !ok {
		t.Error("name should be reusable after reset")
	}
}

// TestManagerAdvanceBeforeStart tests that lobby ticks produce no result
func TestManagerAdvanceBeforeStart(t *testing.T) {
	m := newTestManager()
	m.Join("alice")

	snap, result := m.Advance(time.Now())
	if result != nil {
		t.Error("lobby Advance returned a result")
	}
	if snap.GameStarted || snap.TimeRemaining != nil {
		t.Errorf("lobby snapshot = %+v", snap)
	}
}
