package call

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"localsphere-backend/internal/domain"
	"localsphere-backend/internal/repository/memory"
)

// MockCallRegistry is a mock implementation of Registry
type MockCallRegistry struct {
	mock.Mock
}

func (m *MockCallRegistry) Create(ctx context.Context, input *domain.CallCreate) (*domain.Call, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRegistry) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRegistry) UpdateStatus(ctx context.Context, id, status string, startedAt, endedAt *time.Time) (*domain.Call, error) {
	args := m.Called(ctx, id, status, startedAt, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRegistry) GetActiveCall(ctx context.Context, userID string) (*domain.Call, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Call), args.Error(1)
}

func (m *MockCallRegistry) GetUserCalls(ctx context.Context, userID string) ([]*domain.Call, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Call), args.Error(1)
}

func videoCallInput() *domain.CallCreate {
	return &domain.CallCreate{
		CallerID:         "caller",
		CallerUsername:   "CoolPanda",
		ReceiverID:       "receiver",
		ReceiverUsername: "SwiftEagle",
		CallType:         domain.CallTypeVideo,
	}
}

func TestInitiateCall(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	created := &domain.Call{ID: "call-1", Status: domain.CallStatusPending, CallType: domain.CallTypeVideo}
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CallCreate")).Return(created, nil)

	call, err := service.Initiate(context.Background(), videoCallInput())

	assert.NoError(t, err)
	assert.Equal(t, domain.CallStatusPending, call.Status)
	mockRepo.AssertExpectations(t)
	// Uniqueness is not checked unless enforcement is on.
	mockRepo.AssertNotCalled(t, "GetActiveCall")
}

func TestInitiateCall_InvalidType(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	input := videoCallInput()
	input.CallType = "hologram"
	_, err := service.Initiate(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidCallType)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestInitiateCall_SingleActiveCallEnforced(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, true)

	busy := &domain.Call{ID: "busy", Status: domain.CallStatusAccepted}
	mockRepo.On("GetActiveCall", mock.Anything, "caller").Return(busy, nil)

	_, err := service.Initiate(context.Background(), videoCallInput())

	assert.ErrorIs(t, err, ErrCallInProgress)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestInitiateCall_SingleActiveCallFreePeers(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, true)

	created := &domain.Call{ID: "call-1", Status: domain.CallStatusPending}
	mockRepo.On("GetActiveCall", mock.Anything, "caller").Return(nil, nil)
	mockRepo.On("GetActiveCall", mock.Anything, "receiver").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CallCreate")).Return(created, nil)

	call, err := service.Initiate(context.Background(), videoCallInput())

	assert.NoError(t, err)
	assert.NotNil(t, call)
	mockRepo.AssertExpectations(t)
}

func TestAcceptStampsStartedAt(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	accepted := &domain.Call{ID: "call-1", Status: domain.CallStatusAccepted}
	mockRepo.On("UpdateStatus", mock.Anything, "call-1", domain.CallStatusAccepted,
		mock.AnythingOfType("*time.Time"), (*time.Time)(nil)).Return(accepted, nil)

	call, err := service.Accept(context.Background(), "call-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.CallStatusAccepted, call.Status)
	mockRepo.AssertExpectations(t)
}

func TestDeclineStampsNothing(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	declined := &domain.Call{ID: "call-1", Status: domain.CallStatusDeclined}
	mockRepo.On("UpdateStatus", mock.Anything, "call-1", domain.CallStatusDeclined,
		(*time.Time)(nil), (*time.Time)(nil)).Return(declined, nil)

	call, err := service.Decline(context.Background(), "call-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.CallStatusDeclined, call.Status)
	mockRepo.AssertExpectations(t)
}

func TestEndStampsEndedAt(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	ended := &domain.Call{ID: "call-1", Status: domain.CallStatusEnded}
	mockRepo.On("UpdateStatus", mock.Anything, "call-1", domain.CallStatusEnded,
		(*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(ended, nil)

	call, err := service.End(context.Background(), "call-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.CallStatusEnded, call.Status)
	mockRepo.AssertExpectations(t)
}

func TestTransitionMapsRegistryRejection(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	mockRepo.On("UpdateStatus", mock.Anything, "call-1", mock.Anything,
		mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidTransition)

	_, err := service.Accept(context.Background(), "call-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = service.Decline(context.Background(), "call-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = service.End(context.Background(), "call-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptUnknownCall(t *testing.T) {
	mockRepo := new(MockCallRegistry)
	service := NewService(mockRepo, false)

	mockRepo.On("UpdateStatus", mock.Anything, "missing", mock.Anything,
		mock.Anything, mock.Anything).Return(nil, nil)

	_, err := service.Accept(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCallNotFound)
}

// The accept/end race goes through the real registry: whichever write
// lands second must be validated against the live record, so a finished
// call can never come back as accepted.
func TestConcurrentAcceptAndEndNeverResurrects(t *testing.T) {
	repo := memory.NewCallRepository()
	service := NewService(repo, false)

	for i := 0; i < 200; i++ {
		created, err := service.Initiate(context.Background(), videoCallInput())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			service.Accept(context.Background(), created.ID)
		}()
		go func() {
			defer wg.Done()
			_, err := service.End(context.Background(), created.ID)
			// pending->ended and accepted->ended are both legal.
			assert.NoError(t, err)
		}()
		wg.Wait()

		final, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		require.NotNil(t, final)
		assert.Equal(t, domain.CallStatusEnded, final.Status)
	}
}
