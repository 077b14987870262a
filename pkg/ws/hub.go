package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Hub fans out lead events to the clients watching each lead. Rooms are
// keyed by lead id and exist only while they have subscribers.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[int]map[*client]struct{}
	log     logger.Logger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
}

// client's send channel is never closed; shutdown is signalled through
// done so concurrent broadcasters can never hit a closed channel.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

func (c *client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

func NewHub(log logger.Logger, m *metrics.Metrics, allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		rooms:   make(map[int]map[*client]struct{}),
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Broadcast sends the payload, JSON-encoded, to every client in the lead's
// room. Slow clients are dropped rather than blocking the sender.
func (h *Hub) Broadcast(leadID int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("ws marshal broadcast", "lead_id", leadID, "error", err)
		return
	}

	h.mu.RLock()
	room := h.rooms[leadID]
	clients := make([]*client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		case <-c.done:
		default:
			h.remove(leadID, c)
		}
	}
}

// Serve upgrades the request and subscribes the connection to a lead room
// until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, leadID int) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(conn)
	h.add(leadID, c)
	h.metrics.WSConnected()

	go h.writePump(leadID, c)
	go h.readPump(leadID, c)
	return nil
}

func (h *Hub) add(leadID int, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[leadID]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[leadID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) remove(leadID int, c *client) {
	h.mu.Lock()
	room := h.rooms[leadID]
	_, present := room[c]
	if present {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, leadID)
		}
	}
	h.mu.Unlock()

	if present {
		c.shutdown()
		h.metrics.WSDisconnected()
	}
}

// readPump drains inbound frames. Clients only listen on this channel, so
// anything received is discarded; the read loop exists to notice closes
// and answer pings.
func (h *Hub) readPump(leadID int, c *client) {
	defer func() {
		h.remove(leadID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws read", "lead_id", leadID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(leadID int, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
