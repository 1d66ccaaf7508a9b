package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/metrics"
)

const (
	sendBuffer     = 32
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// HubConfig configures a Hub
type HubConfig struct {
	// AllowedOrigins lists accepted Origin headers, empty accepts any
	AllowedOrigins []string
	MaxClients     int
	Logger         *zap.SugaredLogger
	Metrics        *metrics.WebSocketMetrics
	// OnMessage receives every decoded client message
	OnMessage func(ClientMessage)
	// Snapshot returns the message sent to a client right after it connects
	Snapshot func() []byte
}

type client struct {
	id       uuid.UUID
	conn     *websocket.Conn
	sendCh   chan []byte
	done     chan struct{}
	once     sync.Once
	readOnly bool
}

// Hub fans frames out to websocket clients
type Hub struct {
	mu       sync.RWMutex
	cfg      HubConfig
	clients  map[uuid.UUID]*client
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
	closed   bool
}

// NewHub creates a hub
func NewHub(cfg HubConfig) *Hub {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 256
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &Hub{
		cfg:     cfg,
		clients: make(map[uuid.UUID]*client),
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	normalized := u.Scheme + "://" + u.Host
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == normalized {
			return true
		}
	}
	h.log.Warnw("websocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
	return false
}

// ErrHubFull is returned when MaxClients are connected
var ErrHubFull = errors.New("too many websocket clients")

// ServeWS upgrades the request and blocks until the client disconnects
// A readOnly client receives frames and may click, its control messages are dropped
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, readOnly bool) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		id:       uuid.New(),
		conn:     conn,
		sendCh:   make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		readOnly: readOnly,
	}
	if err := h.register(c); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()), time.Now().Add(writeWait))
		conn.Close()
		return err
	}
	defer h.unregister(c)

	go h.writeLoop(c)
	if h.cfg.Snapshot != nil {
		if msg := h.cfg.Snapshot(); msg != nil {
			h.send(c, msg)
		}
	}
	h.readLoop(c)
	return nil
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errors.New("hub closed")
	}
	if len(h.clients) >= h.cfg.MaxClients {
		return ErrHubFull
	}
	h.clients[c.id] = c
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.ActiveConnections.Inc()
	}
	h.log.Debugw("websocket client connected", "client", c.id, "clients", len(h.clients))
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.ActiveConnections.Dec()
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	c.stop()
	h.log.Debugw("websocket client disconnected", "client", c.id, "clients", n)
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debugw("invalid client message", "client", c.id, "error", err)
			continue
		}
		if c.readOnly && msg.Controls() {
			h.log.Debugw("control message from read-only client dropped", "client", c.id, "type", msg.Type)
			continue
		}
		if h.cfg.OnMessage != nil {
			h.cfg.OnMessage(msg)
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.sendCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.stop()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.stop()
				return
			}
		case <-c.done:
			return
		}
	}
}

// send queues msg for c, dropping it when the client is behind
func (h *Hub) send(c *client, msg []byte) {
	select {
	case c.sendCh <- msg:
	default:
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.SlowClientsDrops.Inc()
		}
	}
}

// Broadcast queues msg for every client
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		h.send(c, msg)
	}
	if h.cfg.Metrics != nil && len(h.clients) > 0 {
		h.cfg.Metrics.FramesPublished.Inc()
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(writeWait))
		c.stop()
	}
}
