package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/model"
)

const (
	writeTimeout = 5 * time.Second
	sendQueue    = 16
)

// Message is the envelope pushed to UI subscribers.
type Message struct {
	Type    string `json:"type"` // notification, result
	Payload any    `json:"payload,omitempty"`
}

// subscriber owns its connection's writes; the hub only enqueues.
type subscriber struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once
}

// Hub fans notifications and poll results out to websocket subscribers.
// Broadcast never waits on the network: a subscriber whose queue is full is
// dropped.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: map[*subscriber]struct{}{},
	}
}

// ServeHTTP upgrades the request and registers the subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	s := &subscriber{
		conn: c,
		send: make(chan Message, sendQueue),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("subscriber connected", zap.String("remote", r.RemoteAddr))
	go h.writeLoop(s)
	go h.readLoop(s)
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Notify implements guard.NotificationSink. It never fails.
func (h *Hub) Notify(_ context.Context, n model.Notification) error {
	h.Broadcast(Message{Type: "notification", Payload: n})
	return nil
}

// PublishResult pushes a poll result; suitable as a coordinator listener.
func (h *Hub) PublishResult(res model.PollResult) {
	h.Broadcast(Message{Type: "result", Payload: res})
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.send <- msg:
		case <-s.done:
		default:
			h.logger.Debug("dropping slow subscriber")
			h.remove(s)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		h.remove(s)
	}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (h *Hub) writeLoop(s *subscriber) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("dropping subscriber", zap.Error(err))
				h.remove(s)
				return
			}
		}
	}
}

// readLoop discards client frames and unregisters on disconnect.
func (h *Hub) readLoop(s *subscriber) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return
		}
	}
}
