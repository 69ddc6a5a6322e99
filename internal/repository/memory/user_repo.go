package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"localsphere-backend/internal/domain"
	"localsphere-backend/pkg/geo"
)

// UserRepository is the process-wide in-memory user store. Users are
// never hard-deleted; liveness is soft via IsActive/LastSeen.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	nowFn func() time.Time
}

// NewUserRepository creates an empty user store
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
		nowFn: time.Now,
	}
}

// Create stores a new user and assigns its id
func (r *UserRepository) Create(ctx context.Context, input *domain.UserCreate) (*domain.User, error) {
	now := r.nowFn()
	radius := input.Radius
	if radius <= 0 {
		radius = 2
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  input.Username,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Radius:    radius,
		IsActive:  true,
		CreatedAt: now,
		LastSeen:  now,
	}

	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()

	return copyUser(user), nil
}

// GetByID returns the user or nil when unknown
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

// Upsert registers a user under a caller-supplied id, creating the
// record on first join. Existing fields other than liveness are kept.
func (r *UserRepository) Upsert(ctx context.Context, id, username string) (*domain.User, error) {
	now := r.nowFn()

	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		if username != "" {
			user.Username = username
		}
		user.IsActive = true
		user.LastSeen = now
		return copyUser(user), nil
	}

	user := &domain.User{
		ID:        id,
		Username:  username,
		Radius:    2,
		IsActive:  true,
		CreatedAt: now,
		LastSeen:  now,
	}
	r.users[id] = user
	return copyUser(user), nil
}

// UpdateLocation sets the user's last-known position and bumps LastSeen.
// Unknown users are a no-op, not an error.
func (r *UserRepository) UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.Latitude = &latitude
		user.Longitude = &longitude
		user.LastSeen = r.nowFn()
	}
	return nil
}

// UpdateRadius sets the user's subscription radius. Unknown users are a
// no-op.
func (r *UserRepository) UpdateRadius(ctx context.Context, id string, radius float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.Radius = radius
	}
	return nil
}

// Touch bumps the user's LastSeen timestamp
func (r *UserRepository) Touch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.LastSeen = r.nowFn()
	}
	return nil
}

// SetActive flips the soft-liveness flag
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.IsActive = active
		user.LastSeen = r.nowFn()
	}
	return nil
}

// GetNearby returns active users with a known position within radius
// miles of the origin. Unlike broadcast delivery this uses the plain
// query radius, not max(query, user).
func (r *UserRepository) GetNearby(ctx context.Context, origin domain.Position, radius float64) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nearby []*domain.User
	for _, user := range r.users {
		pos, ok := user.Pos()
		if !ok || !user.IsActive {
			continue
		}
		if geo.Distance(origin, pos) <= radius {
			nearby = append(nearby, copyUser(user))
		}
	}
	return nearby, nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.Latitude != nil {
		lat := *u.Latitude
		c.Latitude = &lat
	}
	if u.Longitude != nil {
		lng := *u.Longitude
		c.Longitude = &lng
	}
	return &c
}
