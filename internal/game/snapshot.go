package game

// PlayerState is an immutable per-player view inside a snapshot.
// Uses value types (not pointers) to ensure immutability.
type PlayerState struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
	Shape int     `json:"shape"`
}

// CoinState is an immutable per-coin view inside a snapshot.
type CoinState struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// StateSnapshot is a complete point-in-time view of the session, built once
// per tick and broadcast to every client. TimeRemaining is nil until the game
// starts and floors at zero once the duration elapses.
type StateSnapshot struct {
	Players       map[string]PlayerState `json:"players"`
	Coins         []CoinState            `json:"coins"`
	GameStarted   bool                   `json:"game_started"`
	TimeRemaining *float64               `json:"time_remaining"`
	LobbyCount    int                    `json:"lobby_count"`
}

// GameResult carries the outcome of a finished game: the winning player's
// name (ties go to the earlier joiner, empty if no players remain) and every
// final score.
type GameResult struct {
	Winner string
	Scores map[string]int
}
