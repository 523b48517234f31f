package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeGameStart
	EventTypeCoinCollected
	EventTypeGameEnd
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the session audit log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	Player    string    `json:"player"`    // Source player (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeGameStart:
		return "game_start"
	case EventTypeCoinCollected:
		return "coin_collected"
	case EventTypeGameEnd:
		return "game_end"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// JoinPayload contains player join details
type JoinPayload struct {
	Name   string  `json:"name"`
	ID     int     `json:"id"`
	Shape  string  `json:"shape"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// CoinCollectedPayload contains coin award details
type CoinCollectedPayload struct {
	CoinID int    `json:"coinId"`
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// GameStartPayload contains game start details
type GameStartPayload struct {
	Players int `json:"players"`
}

// GameEndPayload contains game end details
type GameEndPayload struct {
	Winner string         `json:"winner"`
	Scores map[string]int `json:"scores"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, player string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Player:    player,
		Payload:   EncodePayload(payload),
	}
}
