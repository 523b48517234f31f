package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dhruvketan/coin-collector-game/internal/api"
	"github.com/Dhruvketan/coin-collector-game/internal/config"
	"github.com/Dhruvketan/coin-collector-game/internal/game"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🪙 ================================")
	log.Println("🪙  COIN COLLECTOR - GAME SERVER")
	log.Println("🪙 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	gameCfg := appConfig.Game

	log.Printf("🎮 Config: %d TPS, %d max coins, %.0fx%.0f map, %s rounds",
		gameCfg.TickRate, gameCfg.MaxCoins, gameCfg.MapWidth, gameCfg.MapHeight, gameCfg.GameDuration)
	log.Printf("🐌 Simulated latency: %s per message", appConfig.Net.Latency)

	// Start event log
	events := game.NewEventLog()
	eventLogPath := getEnvWithDefault("EVENT_LOG_PATH", "events.jsonl")
	if err := events.Start(eventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
		events = nil
	} else {
		log.Printf("📝 Event log: %s", eventLogPath)
	}

	// Start debug server
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	mgr := game.NewManager(gameCfg, events)
	server := api.NewServer(mgr, appConfig, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, appConfig.Server.Addr()); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	if events != nil {
		events.Stop()
	}
	log.Println("👋 Shutdown complete")
}

func getEnvWithDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
