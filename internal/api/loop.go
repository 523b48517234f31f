package api

import (
	"context"
	"log"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
	"github.com/Dhruvketan/coin-collector-game/internal/game"
)

// Loop drives the authoritative simulation at the configured tick rate and
// broadcasts the resulting snapshots. There is exactly one loop per server;
// it is the only caller of Manager.Advance.
type Loop struct {
	mgr *game.Manager
	hub *Hub
	cfg config.Game
}

// NewLoop creates the tick loop. Run must be called to start it.
func NewLoop(mgr *game.Manager, hub *Hub, cfg config.Game) *Loop {
	return &Loop{mgr: mgr, hub: hub, cfg: cfg}
}

// Run blocks until ctx is canceled. Each cycle advances the simulation once,
// then sleeps for whatever remains of the tick interval. A cycle that
// overruns the interval shortens the following sleep to zero but is never
// compensated with extra catch-up ticks. Cancellation is only observed
// between cycles, so an in-flight tick always completes.
func (l *Loop) Run(ctx context.Context) {
	interval := l.cfg.TickInterval()
	log.Printf("⏱️ Tick loop running at %d Hz", l.cfg.TickRate)

	for {
		start := time.Now()

		snap, result := l.mgr.Advance(start)
		RecordTick(time.Since(start))
		UpdateSimulationGauges(len(snap.Players), len(snap.Coins), snap.LobbyCount)

		switch {
		case result != nil:
			// Final snapshot is not broadcast; clients get the result and
			// must re-join the fresh session.
			RecordGameCompleted()
			l.hub.BroadcastGameEnd(result)
		case snap.GameStarted:
			l.hub.BroadcastState(snap)
		}

		sleep := interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}

		select {
		case <-ctx.Done():
			log.Println("⏱️ Tick loop stopped")
			return
		case <-time.After(sleep):
		}
	}
}
