// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all game and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// GAME RULES
// =============================================================================

// Game holds the simulation parameters. These are fixed per session and are
// shared between the session state and the tick loop.
type Game struct {
	TickRate          int           // Simulation updates per second
	MaxCoins          int           // Maximum concurrent coins on the map
	CoinSpawnInterval time.Duration // Periodic spawn cadence while under MaxCoins
	CoinRadius        float64       // Coin visual radius, also drives spawn margin
	CollectionRadius  float64       // Distance at which a player collects a coin
	PlayerStep        float64       // Units moved per input message
	PlayerShapeDim    float64       // Bounding dimension of a player shape
	MapWidth          float64       // Map width in units
	MapHeight         float64       // Map height in units
	GameDuration      time.Duration // Session length once started
	AutoStartTimer    time.Duration // Lobby auto-start delay (placeholder, not enforced)
}

// DefaultGame returns the default game rules.
func DefaultGame() Game {
	return Game{
		TickRate:          20,
		MaxCoins:          10,
		CoinSpawnInterval: 3 * time.Second,
		CoinRadius:        5,
		CollectionRadius:  2,
		PlayerStep:        3,
		PlayerShapeDim:    6,
		MapWidth:          800,
		MapHeight:         600,
		GameDuration:      180 * time.Second,
		AutoStartTimer:    15 * time.Second,
	}
}

// GameFromEnv returns game rules with environment variable overrides.
// Environment variables take precedence over defaults.
func GameFromEnv() Game {
	cfg := DefaultGame()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if mc := getEnvInt("MAX_COINS", 0); mc > 0 {
		cfg.MaxCoins = mc
	}
	if d := getEnvSeconds("COIN_SPAWN_INTERVAL", 0); d > 0 {
		cfg.CoinSpawnInterval = d
	}
	if d := getEnvSeconds("GAME_DURATION", 0); d > 0 {
		cfg.GameDuration = d
	}

	return cfg
}

// TickInterval returns the duration of one simulation tick.
func (g Game) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// =============================================================================
// NETWORK SIMULATION
// =============================================================================

// Net holds the simulated-latency settings applied at the send boundary.
type Net struct {
	// Latency is the artificial delay applied once to every outbound
	// message. The configured value is the full round-trip figure, applied
	// whole per send, not halved.
	Latency time.Duration

	// SendQueueSize bounds the per-client outbound queue. A full queue
	// drops messages rather than blocking the tick loop.
	SendQueueSize int
}

// DefaultNet returns the default network simulation settings.
func DefaultNet() Net {
	return Net{
		Latency:       200 * time.Millisecond,
		SendQueueSize: 64,
	}
}

// NetFromEnv returns network settings with environment variable overrides.
func NetFromEnv() Net {
	cfg := DefaultNet()

	if ms := getEnvInt("LATENCY_MS", -1); ms >= 0 {
		cfg.Latency = time.Duration(ms) * time.Millisecond
	}
	if qs := getEnvInt("SEND_QUEUE_SIZE", 0); qs > 0 {
		cfg.SendQueueSize = qs
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// Server holds HTTP server settings.
type Server struct {
	Host string
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() Server {
	return Server{
		Host: "localhost",
		Port: 8000,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() Server {
	cfg := DefaultServer()

	if h := os.Getenv("SERVER_HOST"); h != "" {
		cfg.Host = h
	}
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// Addr returns the host:port listen address.
func (s Server) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// App holds the complete application configuration.
type App struct {
	Game   Game
	Net    Net
	Server Server
}

// Load returns the complete configuration with environment overrides.
func Load() App {
	return App{
		Game:   GameFromEnv(),
		Net:    NetFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultVal
}
