package api

import (
	"github.com/Dhruvketan/coin-collector-game/internal/game"
)

// Wire protocol: one JSON object per WebSocket text frame, discriminated by
// the "type" field.

// inboundMessage is the envelope for all client→server messages.
type inboundMessage struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"` // "connected": requested player name
	Dir  string `json:"dir,omitempty"`  // "input": up, down, left or right
}

// Inbound message types.
const (
	msgConnected = "connected"
	msgStartGame = "start_game"
	msgInput     = "input"
)

// connectedMessage confirms a successful join.
type connectedMessage struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	ID    int    `json:"id"`
	Shape int    `json:"shape"`
}

// errorMessage reports a rejected request, e.g. a duplicate name.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// lobbyUpdateMessage reports lobby membership to waiting players.
type lobbyUpdateMessage struct {
	Type        string `json:"type"`
	PlayerCount int    `json:"player_count"`
	CanStart    bool   `json:"can_start"`
}

// gameStartPlayer is the per-player payload of a game_start message.
type gameStartPlayer struct {
	ID    int `json:"id"`
	Shape int `json:"shape"`
}

// gameStartMessage announces the transition from lobby to running game.
type gameStartMessage struct {
	Type    string                     `json:"type"`
	Players map[string]gameStartPlayer `json:"players"`
}

// stateMessage is the per-tick snapshot broadcast.
type stateMessage struct {
	Type string `json:"type"`
	game.StateSnapshot
}

// gameEndMessage announces the end of a game with final scores.
// Winner is null when the session ended without any player.
type gameEndMessage struct {
	Type   string         `json:"type"`
	Winner *string        `json:"winner"`
	Scores map[string]int `json:"scores"`
}

func newStateMessage(snap game.StateSnapshot) stateMessage {
	return stateMessage{Type: "state", StateSnapshot: snap}
}

func newGameEndMessage(result *game.GameResult) gameEndMessage {
	msg := gameEndMessage{Type: "game_end", Scores: result.Scores}
	if result.Winner != "" {
		w := result.Winner
		msg.Winner = &w
	}
	return msg
}
