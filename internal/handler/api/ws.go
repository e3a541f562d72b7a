package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	applogger "MarketPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const wsWriteTimeout = 5 * time.Second

// Hub fans completed runs out to websocket subscribers.
type Hub struct {
	logger   *applogger.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*sync.Mutex
}

// NewHub accepts connections whose Origin is in allowedOrigins. "*" accepts any origin.
func NewHub(logger *applogger.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = applogger.Nop()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve upgrades the request and keeps the connection until the client leaves.
func (hub *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return
	}

	hub.mu.Lock()
	hub.clients[conn] = &sync.Mutex{}
	total := len(hub.clients)
	hub.mu.Unlock()
	hub.logger.Debug("websocket client connected", applogger.Int("clients", total))

	defer func() {
		hub.mu.Lock()
		delete(hub.clients, conn)
		total := len(hub.clients)
		hub.mu.Unlock()
		conn.Close()
		hub.logger.Debug("websocket client disconnected", applogger.Int("clients", total))
	}()

	// subscribers never send; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.logger.Warn("websocket read error", applogger.Error(err))
			}
			return
		}
	}
}

// Broadcast sends msg as JSON to every subscriber. Slow or broken clients are dropped.
func (hub *Hub) Broadcast(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		hub.logger.Error("marshal websocket message", applogger.Error(err))
		return
	}

	hub.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(hub.clients))
	locks := make([]*sync.Mutex, 0, len(hub.clients))
	for conn, mu := range hub.clients {
		conns = append(conns, conn)
		locks = append(locks, mu)
	}
	hub.mu.RUnlock()

	for i, conn := range conns {
		locks[i].Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		err := conn.WriteMessage(websocket.TextMessage, data)
		locks[i].Unlock()
		if err != nil {
			hub.logger.Warn("websocket write failed", applogger.Error(err))
			// the reader loop sees the close and unregisters the client
			conn.Close()
		}
	}
}

// Clients returns the number of connected subscribers.
func (hub *Hub) Clients() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Close disconnects every subscriber.
func (hub *Hub) Close() {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for conn, mu := range hub.clients {
		mu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		mu.Unlock()
		conn.Close()
	}
}

// Live streams completed insights runs over a websocket.
func (h *InsightsHandler) Live(c echo.Context) error {
	if h.hub == nil {
		return c.NoContent(http.StatusNotFound)
	}
	h.hub.Serve(c.Response(), c.Request())
	return nil
}

var _ domrepo.Broadcaster = (*Hub)(nil)
