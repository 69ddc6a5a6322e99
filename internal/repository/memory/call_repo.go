package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"localsphere-backend/internal/domain"
)

// CallRepository is the process-wide in-memory call registry. Status
// transition legality is validated here, under the write lock, so it
// holds even under concurrent transitions.
type CallRepository struct {
	mu    sync.RWMutex
	calls map[string]*domain.Call
	nowFn func() time.Time
}

// NewCallRepository creates an empty call registry
func NewCallRepository() *CallRepository {
	return &CallRepository{
		calls: make(map[string]*domain.Call),
		nowFn: time.Now,
	}
}

// Create stores a new call with status pending
func (r *CallRepository) Create(ctx context.Context, input *domain.CallCreate) (*domain.Call, error) {
	call := &domain.Call{
		ID:               uuid.New().String(),
		CallerID:         input.CallerID,
		CallerUsername:   input.CallerUsername,
		ReceiverID:       input.ReceiverID,
		ReceiverUsername: input.ReceiverUsername,
		CallType:         input.CallType,
		Status:           domain.CallStatusPending,
		CreatedAt:        r.nowFn(),
	}

	r.mu.Lock()
	r.calls[call.ID] = call
	r.mu.Unlock()

	return copyCall(call), nil
}

// GetByID returns the call or nil when unknown
func (r *CallRepository) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	call, ok := r.calls[id]
	if !ok {
		return nil, nil
	}
	return copyCall(call), nil
}

// UpdateStatus sets the call status and optional started/ended
// timestamps. Unknown calls return nil. Legality is checked against the
// live record under the write lock, so two racing transitions can never
// both pass validation and a terminal call can never be resurrected.
func (r *CallRepository) UpdateStatus(ctx context.Context, id, status string, startedAt, endedAt *time.Time) (*domain.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := r.calls[id]
	if !ok {
		return nil, nil
	}
	if !domain.CanTransition(call.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	call.Status = status
	if startedAt != nil {
		call.StartedAt = startedAt
	}
	if endedAt != nil {
		call.EndedAt = endedAt
	}
	return copyCall(call), nil
}

// GetActiveCall returns a pending or accepted call that involves the
// user, or nil when there is none. With call uniqueness unenforced
// there may be several; an arbitrary one is returned.
func (r *CallRepository) GetActiveCall(ctx context.Context, userID string) (*domain.Call, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, call := range r.calls {
		if call.Involves(userID) && call.Active() {
			return copyCall(call), nil
		}
	}
	return nil, nil
}

// GetUserCalls returns every call that involves the user, newest first
func (r *CallRepository) GetUserCalls(ctx context.Context, userID string) ([]*domain.Call, error) {
	r.mu.RLock()
	matched := make([]*domain.Call, 0)
	for _, call := range r.calls {
		if call.Involves(userID) {
			matched = append(matched, copyCall(call))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func copyCall(c *domain.Call) *domain.Call {
	cp := *c
	if c.StartedAt != nil {
		t := *c.StartedAt
		cp.StartedAt = &t
	}
	if c.EndedAt != nil {
		t := *c.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}
