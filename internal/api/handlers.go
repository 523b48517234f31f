package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Read-only REST surface. All mutation goes through the WebSocket protocol;
// these endpoints serve dashboards and health checks.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.mgr.Snapshot(time.Now()))
}

func (h *routerHandlers) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	count, canStart, started := h.mgr.LobbyStatus()
	writeJSON(w, map[string]interface{}{
		"player_count": count,
		"can_start":    canStart,
		"game_started": started,
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"connections": h.hub.ClientCount(),
	}
	if h.events != nil {
		stats["events"] = h.events.GetStats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
