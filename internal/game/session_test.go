package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
)

func newTestSession() *Session {
	return NewSession(config.DefaultGame(), rand.New(rand.NewSource(1)))
}

func addPlayers(t *testing.T, s *Session, names ...string) {
	t.Helper()
	for _, name := range names {
		if !s.AddPlayer(name) {
			t.Fatalf("AddPlayer(%q) failed", name)
		}
	}
}

// TestAddPlayerDuplicateName tests that a taken name is rejected without side effects
func TestAddPlayerDuplicateName(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice")

	if s.AddPlayer("alice") {
		t.Fatal("duplicate name should be rejected")
	}
	if s.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d, want 1", s.PlayerCount())
	}
	if s.LobbyCount() != 1 {
		t.Errorf("LobbyCount = %d, want 1", s.LobbyCount())
	}

	// The rejected join must not consume an ID
	addPlayers(t, s, "bob")
	if got := s.Player("bob").ID; got != 1 {
		t.Errorf("bob ID = %d, want 1", got)
	}
}

// TestShapeAlternation tests that shapes alternate with the player count
func TestShapeAlternation(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "a", "b", "c", "d")

	want := map[string]Shape{"a": ShapeCircle, "b": ShapeSquare, "c": ShapeCircle, "d": ShapeSquare}
	for name, shape := range want {
		if got := s.Player(name).Shape; got != shape {
			t.Errorf("player %q shape = %v, want %v", name, got, shape)
		}
	}

	// Shape depends on current count, not join history: after a leave the
	// next joiner fills the freed parity slot.
	s.RemovePlayer("d")
	addPlayers(t, s, "e")
	if got := s.Player("e").Shape; got != ShapeSquare {
		t.Errorf("player e shape = %v, want square", got)
	}
}

// TestSpawnPositionInset tests that players spawn 50 units in from the edges
func TestSpawnPositionInset(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 50; i++ {
		name := "p" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		addPlayers(t, s, name)
		pos := s.Player(name).Pos
		if pos.X < 50 || pos.X > s.cfg.MapWidth-50 || pos.Y < 50 || pos.Y > s.cfg.MapHeight-50 {
			t.Fatalf("spawn %v outside inset bounds", pos)
		}
	}
}

// TestMovementClamping tests that movement keeps the shape inside the map
func TestMovementClamping(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice")
	p := s.Player("alice")
	half := s.cfg.PlayerShapeDim / 2

	p.Pos = Point{X: half + 1, Y: half + 1}
	for i := 0; i < 10; i++ {
		s.UpdatePlayerPosition("alice", DirLeft)
		s.UpdatePlayerPosition("alice", DirUp)
	}
	if p.Pos.X != half || p.Pos.Y != half {
		t.Errorf("position = %v, want clamped to (%v, %v)", p.Pos, half, half)
	}

	for i := 0; i < 1000; i++ {
		s.UpdatePlayerPosition("alice", DirRight)
		s.UpdatePlayerPosition("alice", DirDown)
	}
	if p.Pos.X != s.cfg.MapWidth-half || p.Pos.Y != s.cfg.MapHeight-half {
		t.Errorf("position = %v, want clamped to far corner", p.Pos)
	}
}

// TestUpdatePlayerPositionUnknown tests that unknown players and directions are ignored
func TestUpdatePlayerPositionUnknown(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice")
	before := s.Player("alice").Pos

	s.UpdatePlayerPosition("ghost", DirUp)
	s.UpdatePlayerPosition("alice", Direction("diagonal"))

	if got := s.Player("alice").Pos; got != before {
		t.Errorf("position changed to %v on invalid input", got)
	}
}

// TestStartGame tests lobby gating, coin fill and idempotency
func TestStartGame(t *testing.T) {
	s := newTestSession()
	now := time.Now()

	addPlayers(t, s, "alice")
	if s.CanStartGame() {
		t.Error("one player should not be enough to start")
	}
	if s.StartGame(now) {
		t.Fatal("StartGame should fail with one player")
	}
	if s.CoinCount() != 0 {
		t.Errorf("CoinCount = %d after failed start, want 0", s.CoinCount())
	}

	addPlayers(t, s, "bob")
	if !s.StartGame(now) {
		t.Fatal("StartGame should succeed with two players")
	}
	if s.CoinCount() != s.cfg.MaxCoins {
		t.Errorf("CoinCount = %d, want %d", s.CoinCount(), s.cfg.MaxCoins)
	}

	// Second start is a no-op
	if s.StartGame(now.Add(time.Second)) {
		t.Error("StartGame should fail when already started")
	}
	if got := s.startedAt; got != now {
		t.Errorf("startedAt = %v, want %v", got, now)
	}
}

// TestSpawnCoinCap tests that SpawnCoin never exceeds MaxCoins
func TestSpawnCoinCap(t *testing.T) {
	s := newTestSession()
	for i := 0; i < s.cfg.MaxCoins*2; i++ {
		s.SpawnCoin()
	}
	if s.CoinCount() != s.cfg.MaxCoins {
		t.Errorf("CoinCount = %d, want %d", s.CoinCount(), s.cfg.MaxCoins)
	}
}

// TestCollisionClosestWins tests that the nearest player in range takes the coin
func TestCollisionClosestWins(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "near", "far")
	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	s.coins = []Coin{{ID: 100, Pos: Point{X: 400, Y: 300}}}
	s.Player("near").Pos = Point{X: 401, Y: 300} // 1.0 away
	s.Player("far").Pos = Point{X: 400, Y: 301.5} // 1.5 away

	s.resolveCollisions()

	if got := s.Player("near").Score; got != 1 {
		t.Errorf("near score = %d, want 1", got)
	}
	if got := s.Player("far").Score; got != 0 {
		t.Errorf("far score = %d, want 0", got)
	}
	if s.CoinCount() != 0 {
		t.Errorf("CoinCount = %d, want 0 (awarded coin must be removed)", s.CoinCount())
	}
}

// TestCollisionTieBreaksToEarlierJoiner tests deterministic resolution at equal distance
func TestCollisionTieBreaksToEarlierJoiner(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "first", "second")
	if !s.StartGame(time.Now()) {
		t.Fatal("StartGame failed")
	}

	s.coins = []Coin{{ID: 100, Pos: Point{X: 400, Y: 300}}}
	s.Player("first").Pos = Point{X: 401, Y: 300}
	s.Player("second").Pos = Point{X: 399, Y: 300}

	s.resolveCollisions()

	if got := s.Player("first").Score; got != 1 {
		t.Errorf("first score = %d, want 1", got)
	}
	if got := s.Player("second").Score; got != 0 {
		t.Errorf("second score = %d, want 0", got)
	}
}

// TestCollisionAtExactRadius tests that the collection boundary is inclusive
func TestCollisionAtExactRadius(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	if !s.StartGame(time.Now()) {
		t.Fatal("StartGame failed")
	}

	s.coins = []Coin{{ID: 100, Pos: Point{X: 400, Y: 300}}}
	s.Player("alice").Pos = Point{X: 400 + s.cfg.CollectionRadius, Y: 300}
	s.Player("bob").Pos = Point{X: 50, Y: 50}

	s.resolveCollisions()

	if got := s.Player("alice").Score; got != 1 {
		t.Errorf("alice score = %d, want 1 (exact radius collects)", got)
	}
	if s.CoinCount() != 0 {
		t.Errorf("CoinCount = %d, want 0", s.CoinCount())
	}
}

// TestCollisionOutOfRange tests that coins beyond the collection radius survive
func TestCollisionOutOfRange(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	if !s.StartGame(time.Now()) {
		t.Fatal("StartGame failed")
	}

	s.coins = []Coin{{ID: 100, Pos: Point{X: 400, Y: 300}}}
	s.Player("alice").Pos = Point{X: 400 + s.cfg.CollectionRadius + 0.1, Y: 300}
	s.Player("bob").Pos = Point{X: 50, Y: 50}

	s.resolveCollisions()

	if s.CoinCount() != 1 {
		t.Errorf("CoinCount = %d, want 1", s.CoinCount())
	}
	if got := s.Player("alice").Score; got != 0 {
		t.Errorf("alice score = %d, want 0", got)
	}
}

// TestTickTopsUpCoins tests that collected coins are replaced within the same tick
func TestTickTopsUpCoins(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	// Park both players on top of the first coin
	target := s.coins[0].Pos
	s.Player("alice").Pos = target
	s.Player("bob").Pos = Point{X: 50, Y: 50}

	s.Tick(now.Add(time.Second))

	if got := s.Player("alice").Score; got != 1 {
		t.Errorf("alice score = %d, want 1", got)
	}
	if s.CoinCount() != s.cfg.MaxCoins {
		t.Errorf("CoinCount = %d after top-up, want %d", s.CoinCount(), s.cfg.MaxCoins)
	}
}

// TestTickBeforeStart tests that ticking a lobby session does nothing
func TestTickBeforeStart(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")

	s.Tick(time.Now())

	if s.CoinCount() != 0 {
		t.Errorf("CoinCount = %d before start, want 0", s.CoinCount())
	}
}

// TestTickAfterDuration tests that an expired session stops simulating
func TestTickAfterDuration(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	// Put alice on a coin; an expired tick must not award it
	s.Player("alice").Pos = s.coins[0].Pos
	s.Tick(now.Add(s.cfg.GameDuration))

	if got := s.Player("alice").Score; got != 0 {
		t.Errorf("alice score = %d after expiry tick, want 0", got)
	}
	if !s.Over(now.Add(s.cfg.GameDuration)) {
		t.Error("session should be over at full duration")
	}
}

// TestCoinSpawnInterval tests the periodic spawn timer
func TestCoinSpawnInterval(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	// The top-up refills the map every tick, so the observable effect of the
	// periodic spawn is its timer reset.
	s.Tick(now.Add(s.cfg.CoinSpawnInterval - time.Millisecond))
	if !s.lastCoinSpawn.Equal(now) {
		t.Error("spawn timer should not reset before the interval elapses")
	}

	s.Tick(now.Add(s.cfg.CoinSpawnInterval))
	if !s.lastCoinSpawn.Equal(now.Add(s.cfg.CoinSpawnInterval)) {
		t.Error("spawn timer should reset once the interval elapses")
	}
}

// TestWinner tests highest score with join-order tie break
func TestWinner(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "a", "b", "c")
	if !s.StartGame(time.Now()) {
		t.Fatal("StartGame failed")
	}

	s.Player("a").Score = 3
	s.Player("b").Score = 5
	s.Player("c").Score = 5

	if got := s.Winner(); got != "b" {
		t.Errorf("Winner = %q, want %q (tie goes to earlier joiner)", got, "b")
	}
}

// TestWinnerBeforeStart tests that an unstarted session has no winner
func TestWinnerBeforeStart(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	if got := s.Winner(); got != "" {
		t.Errorf("Winner = %q before start, want empty", got)
	}
}

// TestRemovePlayerIdempotent tests repeated and unknown removals
func TestRemovePlayerIdempotent(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")

	s.RemovePlayer("alice")
	s.RemovePlayer("alice")
	s.RemovePlayer("ghost")

	if s.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d, want 1", s.PlayerCount())
	}
	if s.LobbyCount() != 1 {
		t.Errorf("LobbyCount = %d, want 1", s.LobbyCount())
	}
}

// TestSnapshot tests the broadcast view of a running session
func TestSnapshot(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")

	snap := s.Snapshot(time.Now())
	if snap.GameStarted {
		t.Error("GameStarted should be false in lobby")
	}
	if snap.TimeRemaining != nil {
		t.Error("TimeRemaining should be nil before start")
	}
	if snap.LobbyCount != 2 {
		t.Errorf("LobbyCount = %d, want 2", snap.LobbyCount)
	}

	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	snap = s.Snapshot(now.Add(30 * time.Second))
	if !snap.GameStarted {
		t.Error("GameStarted should be true")
	}
	if snap.TimeRemaining == nil {
		t.Fatal("TimeRemaining should be set after start")
	}
	want := (s.cfg.GameDuration - 30*time.Second).Seconds()
	if *snap.TimeRemaining != want {
		t.Errorf("TimeRemaining = %v, want %v", *snap.TimeRemaining, want)
	}
	if len(snap.Players) != 2 || len(snap.Coins) != s.cfg.MaxCoins {
		t.Errorf("snapshot has %d players, %d coins", len(snap.Players), len(snap.Coins))
	}
}

// TestSnapshotTimeRemainingFloor tests that remaining time never goes negative
func TestSnapshotTimeRemainingFloor(t *testing.T) {
	s := newTestSession()
	addPlayers(t, s, "alice", "bob")
	now := time.Now()
	if !s.StartGame(now) {
		t.Fatal("StartGame failed")
	}

	snap := s.Snapshot(now.Add(s.cfg.GameDuration + time.Minute))
	if snap.TimeRemaining == nil || *snap.TimeRemaining != 0 {
		t.Errorf("TimeRemaining = %v, want 0", snap.TimeRemaining)
	}
}
