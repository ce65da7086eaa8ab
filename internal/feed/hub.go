// Package feed pushes newly stored webhook events to WebSocket clients.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hookboard/internal/message"
	"hookboard/internal/storage"
)

var (
	feedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hookboard_feed_clients",
		Help: "Number of connected live feed clients",
	})

	feedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookboard_feed_dropped_total",
		Help: "Total number of feed messages dropped because the hub or a client was not keeping up",
	})
)

const (
	sendBuffer      = 16
	broadcastBuffer = 64
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxMessageSize  = 4096
)

// Message types
const (
	TypeWebhook   = "webhook"
	TypeSubscribe = "subscribe"
)

// Message is what clients receive for each stored event
type Message struct {
	Type string        `json:"type"`
	Data message.Entry `json:"data"`
}

// SubscribeMessage narrows a client's feed to the listed actions. An empty
// list subscribes to everything.
type SubscribeMessage struct {
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

type broadcastMessage struct {
	action string
	data   []byte
}

// Hub fans stored events out to connected clients. The client set is owned
// by the Run goroutine.
type Hub struct {
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	clients    map[*client]bool
	broadcast  chan broadcastMessage
	register   chan *client
	unregister chan *client
	done       chan struct{}
	connected  atomic.Int64
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMessage, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			feedClients.Inc()
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.subscribedTo(msg.action) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					h.logger.Warn("dropping slow feed client", "remote", c.conn.RemoteAddr().String())
					feedDropped.Inc()
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.connected.Add(-1)
		feedClients.Dec()
	}
}

// Clients returns the number of registered clients
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Publish queues event for every subscribed client. It never blocks; when the
// hub is behind the event is dropped.
func (h *Hub) Publish(event *storage.Event) {
	data, err := json.Marshal(Message{Type: TypeWebhook, Data: message.NewEntry(event)})
	if err != nil {
		h.logger.Error("failed to encode feed message", "error", err)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{action: event.Action.String(), data: data}:
	default:
		h.logger.Warn("feed broadcast dropped", "id", event.ID)
		feedDropped.Inc()
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}
	h.logger.Debug("ws connected", "remote", r.RemoteAddr)

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: h.logger,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()

	h.logger.Debug("ws disconnected", "remote", r.RemoteAddr)
}

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	actions  []string
	actionMu sync.RWMutex
	logger   *slog.Logger
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

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

		var msg SubscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != TypeSubscribe {
			continue
		}
		c.setActions(msg.Actions)
		c.logger.Debug("ws subscribed", "remote", c.conn.RemoteAddr().String(), "actions", msg.Actions)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) setActions(actions []string) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	if len(actions) == 0 {
		c.actions = nil
		return
	}
	c.actions = slices.Clone(actions)
}

func (c *client) subscribedTo(action string) bool {
	c.actionMu.RLock()
	defer c.actionMu.RUnlock()
	return len(c.actions) == 0 || slices.Contains(c.actions, action)
}
