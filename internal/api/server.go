package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
	"github.com/Dhruvketan/coin-collector-game/internal/game"

	"github.com/go-chi/chi/v5"
)

// Server assembles the session manager, WebSocket hub, tick loop and HTTP
// router into one unit.
//
// Background workers do NOT start until Start() is called, so tests can
// construct the server and use Router() without goroutines running.
type Server struct {
	mgr         *game.Manager
	hub         *Hub
	loop        *Loop
	router      *chi.Mux
	rateLimiter *IPRateLimiter
}

// NewServer creates a server with production defaults.
func NewServer(mgr *game.Manager, cfg config.App, events *game.EventLog) *Server {
	s := &Server{mgr: mgr}
	s.hub = NewHub(mgr, cfg.Net)
	s.loop = NewLoop(mgr, s.hub, cfg.Game)
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	s.router = NewRouter(RouterConfig{
		Manager:     mgr,
		Hub:         s.hub,
		Events:      events,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(mgr, cfg, nil)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub, mainly for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the tick loop and the HTTP server until ctx is canceled, then
// shuts both down. This is the only method that starts goroutines or opens
// listeners; call it once.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.loop.Run(ctx)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 Server listening on %s", addr)
		log.Printf("🔌 WebSocket endpoint: ws://%s/ws", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.rateLimiter.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
