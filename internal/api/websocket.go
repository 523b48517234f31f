package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Dhruvketan/coin-collector-game/internal/config"
	"github.com/Dhruvketan/coin-collector-game/internal/game"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Use the centralized origin checker
		if IsAllowedOrigin(origin) {
			return true
		}

		// Log rejected origin for security monitoring
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// envelope is one outbound frame with its scheduled delivery time. The
// artificial latency is applied by stamping due = now + latency at enqueue
// and having the writer sleep until due before the actual write. The delay
// is constant, so FIFO order through the queue is preserved.
type envelope struct {
	due  time.Time
	data []byte
}

// wsClient is one WebSocket connection. Each client owns an independent
// writer goroutine draining send, so a slow or delayed delivery to one
// client never holds up another.
type wsClient struct {
	conn *websocket.Conn
	ip   string

	send chan envelope

	// player name once joined, guarded by the hub mutex
	name string
}

// Hub tracks every WebSocket connection and fans simulation broadcasts out
// to the per-client send queues. All delivery goes through the latency
// queues; nothing writes to a conn directly except its writer goroutine.
type Hub struct {
	mgr *game.Manager
	net config.Net

	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter
}

// NewHub creates a hub with connection limiting.
func NewHub(mgr *game.Manager, netCfg config.Net) *Hub {
	return &Hub{
		mgr:       mgr,
		net:       netCfg,
		clients:   make(map[*wsClient]struct{}),
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Client connected from %s (%d total)", c.ip, count)
	UpdateWSConnections(count)
}

// remove unregisters a client and closes its send queue exactly once. The
// queue is closed under the lock, after removal from the map, so no
// concurrent enqueue can hit a closed channel. The conn itself is closed by
// the writer goroutine once it has drained any still-pending frames, so a
// message enqueued just before disconnect (e.g. a join rejection) is still
// delivered after its latency delay.
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.wsLimiter.Release(c.ip)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Client disconnected (%d remaining)", count)
	UpdateWSConnections(count)
}

// setName records the player name a connection joined under.
func (h *Hub) setName(c *wsClient, name string) {
	h.mu.Lock()
	c.name = name
	h.mu.Unlock()
}

// enqueue schedules one frame for one client. Returns false if the client
// is gone or its queue is full; a full queue drops the frame rather than
// blocking the caller (backpressure).
func (h *Hub) enqueue(c *wsClient, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- envelope{due: time.Now().Add(h.net.Latency), data: data}:
		IncrementWSMessages()
		return true
	default:
		RecordSendDropped()
		return false
	}
}

// sendTo marshals and enqueues a message for a single client.
func (h *Hub) sendTo(c *wsClient, msg interface{}) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	return h.enqueue(c, data)
}

// broadcastPlayers sends a message to every connection that has joined as a
// player. The payload is marshaled once; each client's queue applies the
// latency independently, so the total broadcast delay stays constant no
// matter how many players are connected.
func (h *Hub) broadcastPlayers(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	due := time.Now().Add(h.net.Latency)
	for c := range h.clients {
		if c.name == "" {
			continue
		}
		select {
		case c.send <- envelope{due: due, data: data}:
			IncrementWSMessages()
		default:
			RecordSendDropped()
		}
	}
}

// BroadcastLobbyUpdate announces the current lobby size to all players.
func (h *Hub) BroadcastLobbyUpdate() {
	count, canStart, _ := h.mgr.LobbyStatus()
	h.broadcastPlayers(lobbyUpdateMessage{
		Type:        "lobby_update",
		PlayerCount: count,
		CanStart:    canStart,
	})
}

// BroadcastGameStart announces the lobby-to-game transition with every
// player's identity and shape.
func (h *Hub) BroadcastGameStart() {
	roster := h.mgr.Roster()
	players := make(map[string]gameStartPlayer, len(roster))
	for name, p := range roster {
		players[name] = gameStartPlayer{ID: p.ID, Shape: int(p.Shape)}
	}
	h.broadcastPlayers(gameStartMessage{Type: "game_start", Players: players})
}

// BroadcastState sends one per-tick snapshot to all players.
func (h *Hub) BroadcastState(snap game.StateSnapshot) {
	h.broadcastPlayers(newStateMessage(snap))
}

// BroadcastGameEnd sends the final result to all players.
func (h *Hub) BroadcastGameEnd(result *game.GameResult) {
	h.broadcastPlayers(newGameEndMessage(result))
}

// writeLoop drains the client's send queue, honoring each envelope's
// delivery time. Exits when the queue is closed or a write fails; a failed
// write is not retried, the read loop notices the dead conn and cleans up.
func (c *wsClient) writeLoop() {
	for env := range c.send {
		if wait := time.Until(env.due); wait > 0 {
			time.Sleep(wait)
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, env.data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get client IP for rate limiting
	ip := GetClientIP(r)

	// Check total connection limit
	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	// Check per-IP connection limit
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	// Upgrade to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip) // Release the slot we reserved
		return
	}

	c := &wsClient{
		conn: conn,
		ip:   ip,
		send: make(chan envelope, h.net.SendQueueSize),
	}
	h.add(c)
	go c.writeLoop()

	playerName := h.readLoop(c)

	h.remove(c)
	if playerName != "" {
		h.mgr.Leave(playerName)
		log.Printf("👋 Player %q disconnected", playerName)
		h.BroadcastLobbyUpdate()
	}
}

// readLoop processes client messages until the connection drops or a
// protocol error ends the session. Returns the player name this connection
// joined under, or "" if it never joined.
func (h *Hub) readLoop(c *wsClient) string {
	playerName := ""

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return playerName
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("⚠️ Dropping malformed message from %s: %v", c.ip, err)
			continue
		}

		switch msg.Type {
		case msgConnected:
			name := msg.Name
			if name == "" {
				name = h.mgr.FallbackName()
			}

			p, ok := h.mgr.Join(name)
			if !ok {
				h.sendTo(c, errorMessage{Type: "error", Message: "Name already taken"})
				return playerName
			}

			playerName = name
			h.setName(c, name)
			log.Printf("👤 Player %q joined (id=%d, shape=%s)", name, p.ID, p.Shape)

			if !h.sendTo(c, connectedMessage{
				Type:  "connected",
				Name:  name,
				ID:    p.ID,
				Shape: int(p.Shape),
			}) {
				// Could not confirm the join, abort this connection's setup.
				return playerName
			}

			if _, canStart, started := h.mgr.LobbyStatus(); canStart && !started {
				h.BroadcastLobbyUpdate()
			}

		case msgStartGame:
			if h.mgr.Start(time.Now()) {
				log.Printf("🎮 Game started by %q", playerName)
				h.BroadcastGameStart()
			}

		case msgInput:
			if playerName != "" {
				h.mgr.Move(playerName, game.Direction(msg.Dir))
			}

		default:
			log.Printf("⚠️ Unknown message type %q from %s", msg.Type, c.ip)
		}
	}
}
