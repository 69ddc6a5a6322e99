package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"localsphere-backend/internal/domain"
	"localsphere-backend/internal/service/call"
	"localsphere-backend/internal/service/chat"
	"localsphere-backend/internal/service/user"
	"localsphere-backend/pkg/geo"
	"localsphere-backend/pkg/logger"
	"localsphere-backend/pkg/metrics"
)

// PresenceTracker mirrors user liveness into an external store. The hub
// calls it best-effort; failures are logged and swallowed.
type PresenceTracker interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
	RefreshPresence(ctx context.Context, userID string) error
}

// Hub is the connection registry and proximity broadcast engine. It
// owns every live connection record; session handlers mutate their own
// record through the client and never touch the registry maps directly.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// seq orders registrations so FindByUserID can prefer the most
	// recently registered channel when a user has several.
	seq uint64

	userSvc  *user.Service
	chatSvc  *chat.Service
	callSvc  *call.Service
	presence PresenceTracker // nil when presence mirroring is disabled

	upgrader websocket.Upgrader
}

// NewHub creates a hub wired to the given services. presence may be nil.
func NewHub(userSvc *user.Service, chatSvc *chat.Service, callSvc *call.Service, presence PresenceTracker, allowedOrigins map[string]bool) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		userSvc:  userSvc,
		chatSvc:  chatSvc,
		callSvc:  callSvc,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Non-browser clients send no Origin; allow them.
					return true
				}
				return allowedOrigins[origin]
			},
		},
	}
}

// ServeWS upgrades an HTTP request and attaches a new session.
// GET /ws
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		metrics.WebSocketErrorsTotal.WithLabelValues("upgrade").Inc()
		return
	}

	client := newClient(h, conn)
	h.register(client)

	go client.writePump()
	go client.readPump()
}

// register adds a fresh connection to the registry
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.seq++
	c.seq = h.seq
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(total))
	metrics.WebSocketConnectionTotal.Inc()
}

// unregister removes a connection. Safe to call more than once. The
// send channel is never closed; markClosed signals writePump and
// in-flight broadcasters through the done channel.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}
	c.markClosed()

	metrics.WebSocketConnections.Set(float64(total))

	// If this was the user's last channel, flip soft liveness off.
	userID, _, _ := c.identity()
	if userID == "" {
		return
	}
	if h.FindByUserID(userID) == nil {
		ctx := context.Background()
		if err := h.userSvc.SetActive(ctx, userID, false); err != nil {
			logger.Warn("failed to mark user inactive", zap.String("user_id", userID), zap.Error(err))
		}
		if h.presence != nil {
			if err := h.presence.SetUserOffline(ctx, userID); err != nil {
				logger.Warn("failed to clear presence", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
}

// snapshot returns the open connections at a point in time, so that a
// register or unregister during a broadcast cannot corrupt iteration.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if !c.isClosed() {
			clients = append(clients, c)
		}
	}
	return clients
}

// FindByUserID returns the open connection registered for the user.
// When duplicate channels carry the same user id, the most recently
// registered one wins; stale channels stay deliverable until they
// close.
func (h *Hub) FindByUserID(userID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var best *Client
	for c := range h.clients {
		if c.isClosed() {
			continue
		}
		id, _, _ := c.identity()
		if id != userID {
			continue
		}
		if best == nil || c.seq > best.seq {
			best = c
		}
	}
	return best
}

// BroadcastNearby pushes payload to every open connection with a known
// position within max(originRadius, receiver radius) of origin.
// excludeConn skips a single connection (the sender's own channel);
// excludeUserID skips every channel of that user. Delivery is
// at-most-once, fire-and-forget: a full send queue drops the payload
// for that recipient only.
func (h *Hub) BroadcastNearby(origin domain.Position, originRadius float64, payload []byte, excludeConn *Client, excludeUserID string) int {
	delivered := 0
	for _, c := range h.snapshot() {
		if c == excludeConn {
			continue
		}
		id, pos, radius := c.identity()
		if pos == nil {
			continue
		}
		if excludeUserID != "" && id == excludeUserID {
			continue
		}
		if !geo.InBroadcastRange(origin, originRadius, *pos, radius) {
			continue
		}
		if c.trySend(payload) {
			delivered++
		}
	}
	metrics.BroadcastDeliveredTotal.Add(float64(delivered))
	return delivered
}

// SendToUser delivers payload to the user's most recent open channel.
// Returns false when the user has no open connection; loss is silent by
// design.
func (h *Hub) SendToUser(userID string, payload []byte) bool {
	target := h.FindByUserID(userID)
	if target == nil {
		return false
	}
	return target.trySend(payload)
}

// ActiveConnections reports the current registry size
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
