package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"localsphere-backend/internal/domain"
	"localsphere-backend/pkg/geo"
)

// MessageRepository is the time-bounded in-memory message store.
// Messages expire MessageTTL after creation; eviction is the only
// deletion path. Queries filter expired entries regardless of whether
// eviction has run, so read staleness is bounded by the query itself.
type MessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.Message
	nowFn    func() time.Time
}

// NewMessageRepository creates an empty message store
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		messages: make(map[string]*domain.Message),
		nowFn:    time.Now,
	}
}

// Create stores a new message with createdAt = now and
// expiresAt = now + MessageTTL. It never fails; content validation is a
// collaborator's job.
func (r *MessageRepository) Create(ctx context.Context, input *domain.MessageCreate) (*domain.Message, error) {
	now := r.nowFn()

	message := &domain.Message{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Username:  input.Username,
		Content:   input.Content,
		Latitude:  input.Origin.Latitude,
		Longitude: input.Origin.Longitude,
		Radius:    input.Radius,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.MessageTTL),
	}

	r.mu.Lock()
	r.messages[message.ID] = message
	r.mu.Unlock()

	return message, nil
}

// Query returns non-expired messages whose distance from origin is
// within max(radius, message radius), newest first, truncated to limit.
// The result is a fresh snapshot, not a live view.
func (r *MessageRepository) Query(ctx context.Context, origin domain.Position, radius float64, limit int) ([]*domain.Message, error) {
	now := r.nowFn()

	r.mu.RLock()
	matched := make([]*domain.Message, 0, len(r.messages))
	for _, message := range r.messages {
		if message.Expired(now) {
			continue
		}
		if geo.InBroadcastRange(origin, radius, message.Origin(), message.Radius) {
			matched = append(matched, message)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// EvictExpired removes every message past its retention window and
// returns how many were removed. The scan takes a snapshot of candidate
// ids under a read lock, then re-checks expiry under the write lock, so
// a message created after the scan started is never evicted by the same
// pass and the write lock is held only per deletion batch.
func (r *MessageRepository) EvictExpired(ctx context.Context) (int, error) {
	now := r.nowFn()

	r.mu.RLock()
	expired := make([]string, 0)
	for id, message := range r.messages {
		if message.Expired(now) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	if len(expired) == 0 {
		return 0, nil
	}

	evicted := 0
	r.mu.Lock()
	for _, id := range expired {
		if message, ok := r.messages[id]; ok && message.Expired(now) {
			delete(r.messages, id)
			evicted++
		}
	}
	r.mu.Unlock()

	return evicted, nil
}

// Count returns the current number of stored messages, expired or not
func (r *MessageRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
