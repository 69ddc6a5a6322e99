package chat

import (
	"context"
	"fmt"

	"localsphere-backend/internal/domain"
	"localsphere-backend/pkg/constants"
)

// MessageStore is the message persistence contract the service depends on
type MessageStore interface {
	Create(ctx context.Context, input *domain.MessageCreate) (*domain.Message, error)
	Query(ctx context.Context, origin domain.Position, radius float64, limit int) ([]*domain.Message, error)
	EvictExpired(ctx context.Context) (int, error)
}

// Service handles message business logic
type Service struct {
	messageRepo MessageStore
}

// NewService creates a new chat service
func NewService(messageRepo MessageStore) *Service {
	return &Service{messageRepo: messageRepo}
}

// SendMessage persists a location-scoped message. Proximity fan-out is
// the broadcast engine's job; this only creates the record.
func (s *Service) SendMessage(ctx context.Context, input *domain.MessageCreate) (*domain.Message, error) {
	if input.Radius <= 0 {
		input.Radius = constants.DefaultRadiusMiles
	}

	message, err := s.messageRepo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return message, nil
}

// GetMessages returns the non-expired in-range messages, newest first
func (s *Service) GetMessages(ctx context.Context, origin domain.Position, radius float64, limit int) ([]*domain.Message, error) {
	if radius <= 0 {
		radius = constants.DefaultRadiusMiles
	}
	if limit <= 0 {
		limit = constants.DefaultMessageQueryLimit
	}

	messages, err := s.messageRepo.Query(ctx, origin, radius, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// History returns the recent messages pushed to a freshly joined
// connection.
func (s *Service) History(ctx context.Context, origin domain.Position, radius float64) ([]*domain.Message, error) {
	return s.GetMessages(ctx, origin, radius, constants.MessageHistoryLimit)
}

// EvictExpired reclaims messages past their retention window
func (s *Service) EvictExpired(ctx context.Context) (int, error) {
	evicted, err := s.messageRepo.EvictExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to evict expired messages: %w", err)
	}
	return evicted, nil
}
