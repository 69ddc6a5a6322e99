package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"localsphere-backend/internal/domain"
)

// Service errors
var (
	// ErrCallNotFound is returned for transitions on unknown calls
	ErrCallNotFound = errors.New("call not found")
	// ErrInvalidTransition is returned when the requested transition is
	// not legal from the call's current status
	ErrInvalidTransition = domain.ErrInvalidTransition
	// ErrCallInProgress is returned by Initiate when single-active-call
	// enforcement is on and a peer is already busy
	ErrCallInProgress = errors.New("peer already has an active call")
	// ErrInvalidCallType is returned for call types outside audio/video
	ErrInvalidCallType = errors.New("invalid call type")
)

// Registry is the call persistence contract the service depends on
type Registry interface {
	Create(ctx context.Context, input *domain.CallCreate) (*domain.Call, error)
	GetByID(ctx context.Context, id string) (*domain.Call, error)
	UpdateStatus(ctx context.Context, id, status string, startedAt, endedAt *time.Time) (*domain.Call, error)
	GetActiveCall(ctx context.Context, userID string) (*domain.Call, error)
	GetUserCalls(ctx context.Context, userID string) ([]*domain.Call, error)
}

// Service drives the call state machine (domain.CanTransition).
// Transition legality is enforced by the registry atomically with the
// write; this layer maps outcomes to sentinel errors and stamps the
// started/ended timestamps.
type Service struct {
	callRepo Registry

	// enforceSingleActiveCall rejects Initiate while either peer already
	// has a pending or accepted call. Off by default: the historical
	// contract allows concurrent calls per user.
	enforceSingleActiveCall bool
}

// NewService creates a new call service
func NewService(callRepo Registry, enforceSingleActiveCall bool) *Service {
	return &Service{
		callRepo:                callRepo,
		enforceSingleActiveCall: enforceSingleActiveCall,
	}
}

// Initiate creates a pending call. The receiver does not need to be
// connected; an unanswered call simply stays pending.
func (s *Service) Initiate(ctx context.Context, input *domain.CallCreate) (*domain.Call, error) {
	if input.CallType != domain.CallTypeAudio && input.CallType != domain.CallTypeVideo {
		return nil, ErrInvalidCallType
	}

	if s.enforceSingleActiveCall {
		for _, userID := range []string{input.CallerID, input.ReceiverID} {
			active, err := s.callRepo.GetActiveCall(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check active call: %w", err)
			}
			if active != nil {
				return nil, ErrCallInProgress
			}
		}
	}

	call, err := s.callRepo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create call record: %w", err)
	}
	return call, nil
}

// Accept moves a pending call to accepted and stamps startedAt.
// Accepting a call in any other status is rejected, so a declined or
// ended call can never be resurrected.
func (s *Service) Accept(ctx context.Context, callID string) (*domain.Call, error) {
	return s.transition(ctx, callID, domain.CallStatusAccepted)
}

// Decline moves a pending call to declined
func (s *Service) Decline(ctx context.Context, callID string) (*domain.Call, error) {
	return s.transition(ctx, callID, domain.CallStatusDeclined)
}

// End moves a pending or accepted call to ended and stamps endedAt
func (s *Service) End(ctx context.Context, callID string) (*domain.Call, error) {
	return s.transition(ctx, callID, domain.CallStatusEnded)
}

// transition delegates legality to the registry, which validates
// against the live record under its own lock. Doing a read-validate-
// write here would let two racing transitions both pass validation.
func (s *Service) transition(ctx context.Context, callID, target string) (*domain.Call, error) {
	now := time.Now()
	var startedAt, endedAt *time.Time
	switch target {
	case domain.CallStatusAccepted:
		startedAt = &now
	case domain.CallStatusEnded:
		endedAt = &now
	}

	updated, err := s.callRepo.UpdateStatus(ctx, callID, target, startedAt, endedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update call status: %w", err)
	}
	if updated == nil {
		return nil, ErrCallNotFound
	}
	return updated, nil
}

// Get returns a call by id
func (s *Service) Get(ctx context.Context, callID string) (*domain.Call, error) {
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	return call, nil
}

// UserCalls returns the user's call history, newest first
func (s *Service) UserCalls(ctx context.Context, userID string) ([]*domain.Call, error) {
	calls, err := s.callRepo.GetUserCalls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user calls: %w", err)
	}
	return calls, nil
}
