package game

// Coin is a collectible on the map. Coins live in the session's ordered
// collection; ids are monotonic per session and never reused.
type Coin struct {
	ID  int
	Pos Point
}
