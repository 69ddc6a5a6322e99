package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"localsphere-backend/internal/domain"
	"localsphere-backend/pkg/constants"
	"localsphere-backend/pkg/logger"
	"localsphere-backend/pkg/metrics"
)

// Client is one live connection: the channel handle plus the session
// state announced over it. Created on upgrade, destroyed on close,
// never persisted. Session state is written only from the connection's
// own read loop but read concurrently by broadcasters, hence the mutex.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	// send is never closed; done signals shutdown instead, so a
	// broadcaster racing unregister can never hit a closed channel.
	send   chan []byte
	done   chan struct{}
	seq    uint64
	closed atomic.Bool

	mu     sync.RWMutex
	userID string
	pos    *domain.Position
	radius float64
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, constants.ClientSendBufferSize),
		done:   make(chan struct{}),
		radius: constants.DefaultRadiusMiles,
	}
}

// identity returns the session state as last announced. userID is empty
// and pos nil before user_join.
func (c *Client) identity() (userID string, pos *domain.Position, radius float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.pos, c.radius
}

func (c *Client) setIdentity(userID string, pos *domain.Position, radius float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.pos = pos
	if radius > 0 {
		c.radius = radius
	}
}

func (c *Client) setPosition(pos *domain.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = pos
}

func (c *Client) setRadius(radius float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = radius
}

func (c *Client) isClosed() bool {
	return c.closed.Load()
}

// markClosed is idempotent; done is closed exactly once.
func (c *Client) markClosed() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.done)
	}
}

// trySend queues a payload without blocking. Closed connections and
// full queues drop the payload; the failure never propagates to other
// recipients.
func (c *Client) trySend(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		metrics.WebSocketMessagesTotal.WithLabelValues("out").Inc()
		return true
	case <-c.done:
		return false
	default:
		metrics.BroadcastDroppedTotal.WithLabelValues("queue_full").Inc()
		return false
	}
}

// readPump reads frames from the socket and dispatches them in order.
// Frames from one connection are processed strictly sequentially.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPingInterval))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPingInterval))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("WebSocket connection closed", zap.Error(err))
			}
			break
		}
		metrics.WebSocketMessagesTotal.WithLabelValues("in").Inc()

		event, err := DecodeEvent(data)
		if err != nil {
			// A single bad frame never terminates the channel.
			logger.Warn("invalid frame from WebSocket", zap.Error(err))
			metrics.WebSocketErrorsTotal.WithLabelValues("decode").Inc()
			continue
		}

		c.handleEvent(event)
	}
}

// writePump writes queued payloads to the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(constants.WebSocketPingInterval * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				metrics.WebSocketErrorsTotal.WithLabelValues("write").Inc()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
