// Package push fans engine events out to websocket clients. The hub keeps
// a plain registry of connections; slow consumers are disconnected rather
// than allowed to stall a broadcast.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Event names pushed over the hub.
const (
	EventMatchesUpdate   = "matches:update"
	EventMarketsUpdate   = "markets:update"
	EventTradeConfirmed  = "trade:confirmed"
	EventPositionSettled = "position:settled"
	EventPortfolioUpdate = "portfolio:update"
)

const defaultSendBuffer = 32

const writeTimeout = 10 * time.Second

// Event is the wire envelope for every push message.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	TS    int64  `json:"ts"`
}

type client struct {
	userID string
	send   chan []byte
}

// Hub tracks connected clients and delivers serialized events to them.
// All methods are safe on a nil hub, which simply drops events.
type Hub struct {
	logger     *zap.Logger
	sendBuffer int

	mu      sync.Mutex
	clients map[*client]struct{}
	byUser  map[string]map[*client]struct{}
	closed  bool
}

func NewHub(sendBuffer int, logger *zap.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		logger:     logger,
		sendBuffer: sendBuffer,
		clients:    make(map[*client]struct{}),
		byUser:     make(map[string]map[*client]struct{}),
	}
}

// Broadcast sends the event to every connected client.
func (h *Hub) Broadcast(event string, data any) {
	if h == nil {
		return
	}
	payload, ok := h.encode(event, data)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.deliverLocked(c, event, payload)
	}
}

// ToUser sends the event to every connection the user holds. Unknown users
// are a no-op; private events just go nowhere until the user connects.
func (h *Hub) ToUser(userID string, event string, data any) {
	if h == nil || userID == "" {
		return
	}
	payload, ok := h.encode(event, data)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.byUser[userID] {
		h.deliverLocked(c, event, payload)
	}
}

// Clients reports the number of open connections.
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[*client]struct{})
	h.byUser = make(map[string]map[*client]struct{})
}

// Serve upgrades the request and pumps events to the connection until the
// client goes away or the hub shuts down. It blocks for the lifetime of
// the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	if h == nil {
		http.Error(w, "push unavailable", http.StatusServiceUnavailable)
		return nil
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}

	c := &client{userID: userID, send: make(chan []byte, h.sendBuffer)}
	if !h.register(c) {
		return conn.Close(websocket.StatusGoingAway, "shutting down")
	}
	defer h.unregister(c)

	ctx := r.Context()

	// Inbound frames are ignored; the read loop only notices disconnects.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return conn.Close(websocket.StatusGoingAway, "shutting down")
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return err
			}
		case err := <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "")
			if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
				return nil
			}
			return err
		case <-ctx.Done():
			return conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}

func (h *Hub) encode(event string, data any) ([]byte, bool) {
	payload, err := json.Marshal(Event{Event: event, Data: data, TS: time.Now().UnixMilli()})
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("push event not serializable", zap.String("event", event), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// deliverLocked queues the payload, disconnecting the client if its buffer
// is already full.
func (h *Hub) deliverLocked(c *client, event string, payload []byte) {
	select {
	case c.send <- payload:
	default:
		if h.logger != nil {
			h.logger.Warn("push client too slow, dropping",
				zap.String("user_id", c.userID),
				zap.String("event", event))
		}
		h.removeLocked(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if c.userID != "" {
		set := h.byUser[c.userID]
		if set == nil {
			set = make(map[*client]struct{})
			h.byUser[c.userID] = set
		}
		set[c] = struct{}{}
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked is idempotent; both the serve loop and a full-buffer drop
// can race to remove the same client.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if c.userID != "" {
		set := h.byUser[c.userID]
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	close(c.send)
}
