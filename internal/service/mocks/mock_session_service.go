package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) CreateOrGet(ctx context.Context, userID string, preferences json.RawMessage) (*model.Session, error) {
	args := m.Called(ctx, userID, preferences)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionService) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}
