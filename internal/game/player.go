package game

// Shape identifies a player's avatar shape. Shapes alternate by join order;
// only two exist.
type Shape int

const (
	ShapeCircle Shape = 0
	ShapeSquare Shape = 1
)

// String returns the shape name used on the wire.
func (s Shape) String() string {
	if s == ShapeSquare {
		return "square"
	}
	return "circle"
}

// Direction is a single discrete movement input.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Player is one connected participant. Owned exclusively by a Session;
// mutate only while holding the Manager lock.
type Player struct {
	ID    int
	Name  string
	Pos   Point
	Score int
	Shape Shape
}

// step moves the player one input step in the given direction, clamped so the
// shape's bounding box stays inside the map. Unknown directions are ignored.
func (p *Player) step(dir Direction, stepSize, shapeDim, mapW, mapH float64) {
	half := shapeDim / 2
	switch dir {
	case DirUp:
		p.Pos.Y = clamp(p.Pos.Y-stepSize, half, mapH-half)
	case DirDown:
		p.Pos.Y = clamp(p.Pos.Y+stepSize, half, mapH-half)
	case DirLeft:
		p.Pos.X = clamp(p.Pos.X-stepSize, half, mapW-half)
	case DirRight:
		p.Pos.X = clamp(p.Pos.X+stepSize, half, mapW-half)
	}
}
