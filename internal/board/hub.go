package board

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

const (
	// DefaultRecentLimit is how many notifications a snapshot carries.
	DefaultRecentLimit = 50
	subscriberBuffer   = 64
)

// Hub fans notifications out to live subscribers and keeps the most
// recent ones for snapshots.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan models.Notification]struct{}
	recent      []models.Notification
	limit       int
}

func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Hub{
		subscribers: make(map[chan models.Notification]struct{}),
		limit:       limit,
	}
}

// Publish stamps n with an id and time when missing and delivers it.
// Subscribers whose buffer is full miss the notification.
func (h *Hub) Publish(n models.Notification) models.Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, n)
	if over := len(h.recent) - h.limit; over > 0 {
		h.recent = append([]models.Notification(nil), h.recent[over:]...)
	}

	for ch := range h.subscribers {
		select {
		case ch <- n:
		default:
			// Drop if subscriber is slow
		}
	}
	return n
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called once; it closes the channel.
func (h *Hub) Subscribe() (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Recent returns retained notifications, oldest first.
func (h *Hub) Recent() []models.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Notification, len(h.recent))
	copy(out, h.recent)
	return out
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
