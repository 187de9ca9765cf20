// internal/diag/hub.go
package diag

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// subscriberBuffer bounds each subscriber's queue; slow readers get dropped
// rather than stalling the broadcast.
const subscriberBuffer = 16

// hub fans state frames out to websocket subscribers.
type hub struct {
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[uuid.UUID]chan []byte
	closed bool
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		logger: logger,
		subs:   make(map[uuid.UUID]chan []byte),
	}
}

// subscribe registers a new reader and returns its id and frame channel.
func (h *hub) subscribe() (uuid.UUID, <-chan []byte) {
	id := uuid.New()
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return id, ch
	}
	h.subs[id] = ch
	h.logger.Debug("diag subscriber connected",
		zap.String("id", id.String()), zap.Int("total", len(h.subs)))
	return id, ch
}

// unsubscribe removes a reader. Safe to call twice.
func (h *hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
		h.logger.Debug("diag subscriber disconnected",
			zap.String("id", id.String()), zap.Int("total", len(h.subs)))
	}
}

// broadcast queues a frame for every subscriber, dropping those whose buffer
// is full.
func (h *hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- frame:
		default:
			delete(h.subs, id)
			close(ch)
			h.logger.Warn("dropped slow diag subscriber", zap.String("id", id.String()))
		}
	}
}

// closeAll disconnects every subscriber and rejects new ones.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
