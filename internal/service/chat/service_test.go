package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"localsphere-backend/internal/domain"
)

// MockMessageStore is a mock implementation of MessageStore
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Create(ctx context.Context, input *domain.MessageCreate) (*domain.Message, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageStore) Query(ctx context.Context, origin domain.Position, radius float64, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, origin, radius, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageStore) EvictExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestSendMessageDefaultsRadius(t *testing.T) {
	mockStore := new(MockMessageStore)
	service := NewService(mockStore)

	created := &domain.Message{ID: "m1", Content: "hello"}
	mockStore.On("Create", mock.Anything, mock.MatchedBy(func(input *domain.MessageCreate) bool {
		return input.Radius == 2.0
	})).Return(created, nil)

	message, err := service.SendMessage(context.Background(), &domain.MessageCreate{
		UserID:   "user-1",
		Username: "CoolPanda",
		Content:  "hello",
		Origin:   domain.Position{Latitude: 40.0, Longitude: -73.0},
	})

	assert.NoError(t, err)
	assert.Equal(t, "hello", message.Content)
	mockStore.AssertExpectations(t)
}

func TestGetMessagesAppliesDefaults(t *testing.T) {
	mockStore := new(MockMessageStore)
	service := NewService(mockStore)

	origin := domain.Position{Latitude: 40.0, Longitude: -73.0}
	mockStore.On("Query", mock.Anything, origin, 2.0, 50).Return([]*domain.Message{}, nil)

	_, err := service.GetMessages(context.Background(), origin, 0, 0)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestHistoryUsesJoinLimit(t *testing.T) {
	mockStore := new(MockMessageStore)
	service := NewService(mockStore)

	origin := domain.Position{Latitude: 40.0, Longitude: -73.0}
	mockStore.On("Query", mock.Anything, origin, 1.5, 20).Return([]*domain.Message{}, nil)

	_, err := service.History(context.Background(), origin, 1.5)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}
