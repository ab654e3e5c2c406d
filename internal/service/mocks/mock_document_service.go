package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadedDocument, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadedDocument), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, sessionID string) (*service.DocumentListResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, id, sessionID string) (string, error) {
	args := m.Called(ctx, id, sessionID)
	return args.String(0), args.Error(1)
}
