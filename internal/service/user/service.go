package user

import (
	"context"
	"errors"
	"fmt"

	"localsphere-backend/internal/domain"
)

// ErrUserNotFound is returned when a lookup misses
var ErrUserNotFound = errors.New("user not found")

// Store is the user persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, input *domain.UserCreate) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, id, username string) (*domain.User, error)
	UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error
	UpdateRadius(ctx context.Context, id string, radius float64) error
	Touch(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	GetNearby(ctx context.Context, origin domain.Position, radius float64) ([]*domain.User, error)
}

// Service handles user identity and liveness logic
type Service struct {
	userRepo Store
}

// NewService creates a new user service
func NewService(userRepo Store) *Service {
	return &Service{userRepo: userRepo}
}

// Create registers a new user
func (s *Service) Create(ctx context.Context, input *domain.UserCreate) (*domain.User, error) {
	user, err := s.userRepo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Get returns the user by id
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RecordJoin upserts the user on a websocket join and stores the
// announced position and radius.
func (s *Service) RecordJoin(ctx context.Context, id, username string, pos *domain.Position, radius float64) error {
	if _, err := s.userRepo.Upsert(ctx, id, username); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	if pos != nil {
		if err := s.userRepo.UpdateLocation(ctx, id, pos.Latitude, pos.Longitude); err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
	}
	if radius > 0 {
		if err := s.userRepo.UpdateRadius(ctx, id, radius); err != nil {
			return fmt.Errorf("failed to update radius: %w", err)
		}
	}
	return nil
}

// UpdateLocation records a new last-known position
func (s *Service) UpdateLocation(ctx context.Context, id string, pos domain.Position) error {
	return s.userRepo.UpdateLocation(ctx, id, pos.Latitude, pos.Longitude)
}

// UpdateRadius records a new subscription radius
func (s *Service) UpdateRadius(ctx context.Context, id string, radius float64) error {
	return s.userRepo.UpdateRadius(ctx, id, radius)
}

// Touch bumps the user's LastSeen on channel activity
func (s *Service) Touch(ctx context.Context, id string) error {
	return s.userRepo.Touch(ctx, id)
}

// SetActive flips soft liveness, used when the last connection for a
// user goes away.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.userRepo.SetActive(ctx, id, active)
}

// Nearby returns the active users within radius miles of origin
func (s *Service) Nearby(ctx context.Context, origin domain.Position, radius float64) ([]*domain.User, error) {
	users, err := s.userRepo.GetNearby(ctx, origin, radius)
	if err != nil {
		return nil, fmt.Errorf("failed to get nearby users: %w", err)
	}
	return users, nil
}
