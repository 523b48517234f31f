package game

import (
	"math"
	"math/rand"
)

// Point is a position on the map.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// WithinRadius reports whether b lies within radius r of a.
func WithinRadius(a, b Point, r float64) bool {
	return Distance(a, b) <= r
}

// randomCoinPosition samples a uniform position for a coin spawn, keeping a
// safety margin of coinRadius+5 from every map edge.
func randomCoinPosition(rng *rand.Rand, mapW, mapH, coinRadius float64) Point {
	margin := coinRadius + 5
	return Point{
		X: margin + rng.Float64()*(mapW-2*margin),
		Y: margin + rng.Float64()*(mapH-2*margin),
	}
}

// randomSpawnPosition samples a uniform starting position for a player,
// 50 units in from every map edge.
func randomSpawnPosition(rng *rand.Rand, mapW, mapH float64) Point {
	return Point{
		X: 50 + rng.Float64()*(mapW-100),
		Y: 50 + rng.Float64()*(mapH-100),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
