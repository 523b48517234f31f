package game

import (
	"math/rand"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
)

// Session is the aggregate root for one game instance: every player, every
// coin, the lobby and the started/over lifecycle. A Session is NOT safe for
// concurrent use; the owning Manager serializes all access. Sessions are
// created fresh at startup and replaced wholesale when a game ends.
type Session struct {
	cfg    config.Game
	rng    *rand.Rand
	events *EventLog // optional audit log, may be nil

	players   map[string]*Player
	joinOrder []string // player names in join order, drives deterministic iteration
	coins     []Coin
	lobby     []string // names waiting pre-game; not consulted once started

	nextCoinID   int
	nextPlayerID int

	started       bool
	startedAt     time.Time
	lastCoinSpawn time.Time
}

// NewSession creates an empty session with the given rules. The RNG drives
// coin and player placement; pass a seeded source for reproducible tests.
func NewSession(cfg config.Game, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		cfg:     cfg,
		rng:     rng,
		players: make(map[string]*Player),
	}
}

// AddPlayer admits a new player into the session and its lobby. It fails if
// the name is already taken, leaving all state unchanged. Shape alternates by
// join order and the starting position is sampled 50 units in from the edges.
func (s *Session) AddPlayer(name string) bool {
	if _, taken := s.players[name]; taken {
		return false
	}

	p := &Player{
		ID:    s.nextPlayerID,
		Name:  name,
		Pos:   randomSpawnPosition(s.rng, s.cfg.MapWidth, s.cfg.MapHeight),
		Shape: Shape(len(s.players) % 2),
	}

	s.players[name] = p
	s.joinOrder = append(s.joinOrder, name)
	s.lobby = append(s.lobby, name)
	s.nextPlayerID++
	return true
}

// RemovePlayer removes a player from the session and the lobby. Removing an
// unknown name is a no-op.
func (s *Session) RemovePlayer(name string) {
	if _, ok := s.players[name]; !ok {
		return
	}
	delete(s.players, name)
	s.joinOrder = removeName(s.joinOrder, name)
	s.lobby = removeName(s.lobby, name)
}

// Player returns the named player, or nil.
func (s *Session) Player(name string) *Player {
	return s.players[name]
}

// PlayerCount returns the number of players currently in the session.
func (s *Session) PlayerCount() int {
	return len(s.players)
}

// LobbyCount returns the number of players waiting in the lobby.
func (s *Session) LobbyCount() int {
	return len(s.lobby)
}

// Started reports whether the game has been started.
func (s *Session) Started() bool {
	return s.started
}

// CanStartGame reports whether enough players are waiting to start.
func (s *Session) CanStartGame() bool {
	return len(s.lobby) >= 2
}

// StartGame flips the session into the running state, records the start time
// and fills the map up to MaxCoins. Returns false without side effects if the
// game already started or the lobby is too small.
func (s *Session) StartGame(now time.Time) bool {
	if s.started || !s.CanStartGame() {
		return false
	}
	s.started = true
	s.startedAt = now
	s.lastCoinSpawn = now
	for i := 0; i < s.cfg.MaxCoins; i++ {
		s.SpawnCoin()
	}
	return true
}

// SpawnCoin appends one coin at a random position, unless the map already
// holds the maximum.
func (s *Session) SpawnCoin() {
	if len(s.coins) >= s.cfg.MaxCoins {
		return
	}
	s.coins = append(s.coins, Coin{
		ID:  s.nextCoinID,
		Pos: randomCoinPosition(s.rng, s.cfg.MapWidth, s.cfg.MapHeight, s.cfg.CoinRadius),
	})
	s.nextCoinID++
}

// CoinCount returns the number of coins currently on the map.
func (s *Session) CoinCount() int {
	return len(s.coins)
}

// UpdatePlayerPosition applies one discrete movement input for the named
// player. Unknown players and unrecognized directions are ignored.
func (s *Session) UpdatePlayerPosition(name string, dir Direction) {
	p, ok := s.players[name]
	if !ok {
		return
	}
	p.step(dir, s.cfg.PlayerStep, s.cfg.PlayerShapeDim, s.cfg.MapWidth, s.cfg.MapHeight)
}

// Over reports whether the game duration has fully elapsed.
func (s *Session) Over(now time.Time) bool {
	return s.started && now.Sub(s.startedAt) >= s.cfg.GameDuration
}

// Tick advances the simulation by one update cycle: periodic coin spawning,
// collision resolution and coin top-up. It does nothing before the game
// starts, and nothing once the duration has elapsed (the server detects the
// over state via the snapshot and ends the session).
func (s *Session) Tick(now time.Time) {
	if !s.started {
		return
	}
	if s.Over(now) {
		return
	}

	if now.Sub(s.lastCoinSpawn) >= s.cfg.CoinSpawnInterval {
		s.SpawnCoin()
		s.lastCoinSpawn = now
	}

	s.resolveCollisions()

	// Replace collected coins immediately, not rate-limited.
	for len(s.coins) < s.cfg.MaxCoins {
		s.SpawnCoin()
	}
}

// resolveCollisions awards each coin to the closest player within the
// collection radius, if any, and removes awarded coins. Ties break to the
// earlier joiner so results are reproducible. A player may take several coins
// in one tick; each coin goes to at most one player.
func (s *Session) resolveCollisions() {
	kept := s.coins[:0]
	for _, coin := range s.coins {
		var winner *Player
		best := 0.0
		for _, name := range s.joinOrder {
			p := s.players[name]
			if !WithinRadius(p.Pos, coin.Pos, s.cfg.CollectionRadius) {
				continue
			}
			if d := Distance(p.Pos, coin.Pos); winner == nil || d < best {
				winner = p
				best = d
			}
		}
		if winner != nil {
			winner.Score++
			if s.events != nil {
				s.events.EmitSimple(EventTypeCoinCollected, winner.Name,
					CoinCollectedPayload{CoinID: coin.ID, Player: winner.Name, Score: winner.Score})
			}
			continue
		}
		kept = append(kept, coin)
	}
	s.coins = kept
}

// Winner returns the name of the player with the strictly highest score, or
// "" if the game never started. Score ties go to the earlier joiner.
func (s *Session) Winner() string {
	if !s.started {
		return ""
	}
	winner := ""
	best := -1
	for _, name := range s.joinOrder {
		if p := s.players[name]; p.Score > best {
			best = p.Score
			winner = name
		}
	}
	return winner
}

// Scores returns every player's current score keyed by name.
func (s *Session) Scores() map[string]int {
	scores := make(map[string]int, len(s.players))
	for name, p := range s.players {
		scores[name] = p.Score
	}
	return scores
}

// Snapshot produces an immutable, serializable view of the session for
// broadcast to clients.
func (s *Session) Snapshot(now time.Time) StateSnapshot {
	snap := StateSnapshot{
		Players:     make(map[string]PlayerState, len(s.players)),
		Coins:       make([]CoinState, 0, len(s.coins)),
		GameStarted: s.started,
		LobbyCount:  len(s.lobby),
	}

	for name, p := range s.players {
		snap.Players[name] = PlayerState{
			ID:    p.ID,
			X:     p.Pos.X,
			Y:     p.Pos.Y,
			Score: p.Score,
			Shape: int(p.Shape),
		}
	}
	for _, c := range s.coins {
		snap.Coins = append(snap.Coins, CoinState{ID: c.ID, X: c.Pos.X, Y: c.Pos.Y})
	}

	if s.started {
		remaining := (s.cfg.GameDuration - now.Sub(s.startedAt)).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		snap.TimeRemaining = &remaining
	}

	return snap
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
