package ws

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Client is one notification socket of a signed-in user.
type Client struct {
	UserID uint
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 64)}
}

// Close is safe to call more than once. The hub lock is taken before the client lock,
// matching BroadcastToUser.
func (c *Client) Close() {
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Hub tracks live connections per user and fans notifications out to them.
type Hub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{byUser: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

// BroadcastToUser sends payload to every connection of userID. Slow clients drop
// messages rather than block the sender.
func (h *Hub) BroadcastToUser(userID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Warn("encode ws payload")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		c.mu.Lock()
		if !c.closed {
			select {
			case c.Send <- data:
			default:
			}
		}
		c.mu.Unlock()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byUser {
		n += len(m)
	}
	return n
}
