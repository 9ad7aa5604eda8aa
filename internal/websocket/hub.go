package websocket

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// HubConfig controls which event classes are broadcast.
type HubConfig struct {
	BroadcastDetections bool
	BroadcastSystem     bool
	BroadcastConnects   bool
	AllowedOrigins      []string
}

// Client is one connected monitor.
type Client struct {
	ID   string
	IP   string
	Conn *websocket.Conn
	Send chan Event
}

// Hub maintains the set of active monitoring clients and broadcasts
// detection events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	config     *HubConfig
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	mu         sync.RWMutex
}

// NewHub creates a new event hub.
func NewHub(config *HubConfig, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		config:     config,
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// UpdateConfig swaps the broadcast switches and allowed origins.
// Existing connections are kept; the new settings apply to subsequent
// events and upgrades.
func (h *Hub) UpdateConfig(config *HubConfig) {
	h.mu.Lock()
	h.config = config
	h.mu.Unlock()
}

func (h *Hub) currentConfig() *HubConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.currentConfig().AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Run handles client registration, unregistration and broadcasting. It
// blocks and is intended to run in its own goroutine.
func (h *Hub) Run() {
	h.logger.Info("Starting monitoring event hub")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Monitor connected",
		zap.String("client_id", client.ID),
		zap.String("client_ip", client.IP),
		zap.Int("active_connections", total),
	)

	h.BroadcastEvent(Event{
		Type:      EventTypeConnection,
		Timestamp: time.Now(),
		Data:      ConnectionEvent{Action: "connected", ClientID: client.ID, ClientIP: client.IP},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.logger.Info("Monitor disconnected",
		zap.String("client_id", client.ID),
		zap.Int("active_connections", total),
	)

	h.BroadcastEvent(Event{
		Type:      EventTypeConnection,
		Timestamp: time.Now(),
		Data:      ConnectionEvent{Action: "disconnected", ClientID: client.ID, ClientIP: client.IP},
	})
}

func (h *Hub) broadcastEvent(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- event:
		default:
			// Slow consumer: drop the connection rather than block the hub
			h.logger.Warn("Client send channel full, closing connection",
				zap.String("client_id", client.ID))
			delete(h.clients, client)
			close(client.Send)
		}
	}
}

// BroadcastEvent queues an event for delivery to all clients, subject to
// the configured event-class switches. A full queue drops the event.
func (h *Hub) BroadcastEvent(event Event) {
	if !h.shouldBroadcast(event.Type) {
		return
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping event",
			zap.String("event_type", string(event.Type)))
	}
}

func (h *Hub) shouldBroadcast(eventType EventType) bool {
	config := h.currentConfig()
	if config == nil {
		return false
	}
	switch eventType {
	case EventTypeDetection:
		return config.BroadcastDetections
	case EventTypeSystemStatus:
		return config.BroadcastSystem
	case EventTypeConnection:
		return config.BroadcastConnects
	default:
		return false
	}
}

// ClientCount returns the number of connected monitors.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades an HTTP request and attaches the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:   generateClientID(),
		IP:   clientIP(r),
		Conn: conn,
		Send: make(chan Event, 256),
	}

	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

// writePump delivers queued events and keepalive pings to one client.
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client messages to keep pong handling alive. Monitors
// are read-only; inbound payloads are discarded.
func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister <- client
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func generateClientID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "client-unknown"
	}
	return "client-" + hex.EncodeToString(b)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
