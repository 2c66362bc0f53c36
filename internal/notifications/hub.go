package notifications

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live websocket connections per user and pushes notifications to
// every open session of that user. Users with no open connection are skipped;
// they still see the notification through the list endpoint.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
	log   *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.conns[userID] = set
	}
	set[conn] = struct{}{}
	h.log.Info("notification hub: connected", slog.String("user_id", userID), slog.Int("sessions", len(set)))
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

// Publish sends the notification to every open session of the user. Writes
// happen under the hub lock so that two notifications never interleave on the
// same connection. Dead connections are dropped on write failure.
func (h *Hub) Publish(userID string, n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		return
	}
	for conn := range set {
		if err := conn.WriteJSON(n); err != nil {
			h.log.Warn("notification hub: write failed, dropping connection",
				slog.String("user_id", userID), slog.String("error", err.Error()))
			conn.Close()
			delete(set, conn)
		}
	}
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}
