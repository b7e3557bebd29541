// Package eventbus is a tiny websocket-based fan-out used to surface
// recording lifecycle events to a UI process (RecordingState errors are not
// published here), adapted from
// the teacher's server/internal/api/server.go signaling upgrade handler —
// repurposed here from bidirectional WebRTC signaling to a one-way
// broadcast of JSON events.
package eventbus

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetcap/core/internal/logger"
)

// Event is one notification pushed to connected UI clients.
type Event struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Bus broadcasts Events to every connected subscriber.
type Bus struct {
	mu   sync.Mutex
	subs map[*websocket.Conn]chan Event

	log *logger.ContextLogger
}

// New creates an empty event Bus.
func New(log *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[*websocket.Conn]chan Event),
		log:  log.With("eventbus"),
	}
}

// HandleWebSocket upgrades an HTTP request and registers the connection as
// a subscriber until it disconnects.
func (b *Bus) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Error("websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[conn] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for event := range ch {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}

// Publish sends an event to every currently-connected subscriber,
// dropping it for any subscriber whose buffer is full rather than
// blocking the publisher.
func (b *Bus) Publish(eventType string, data interface{}) {
	event := Event{Type: eventType, Timestamp: time.Now().UnixMilli(), Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn("dropping event for slow subscriber")
			_ = conn
		}
	}
}
