package mocks

import (
	"context"
	"io"

	"mediapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Upload(ctx context.Context, r io.Reader, rawKeywords string) (*model.Content, error) {
	args := m.Called(ctx, r, rawKeywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

func (m *MockContentService) Fetch(ctx context.Context, name string, count bool) (*model.Content, io.ReadCloser, error) {
	args := m.Called(ctx, name, count)
	var content *model.Content
	if args.Get(0) != nil {
		content = args.Get(0).(*model.Content)
	}
	var rc io.ReadCloser
	if args.Get(1) != nil {
		rc = args.Get(1).(io.ReadCloser)
	}
	return content, rc, args.Error(2)
}

func (m *MockContentService) Search(ctx context.Context, rawKeywords []string) ([]model.Content, error) {
	args := m.Called(ctx, rawKeywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Content), args.Error(1)
}

func (m *MockContentService) UpdateKeywords(ctx context.Context, name string, rawKeywords []string) (*model.Content, error) {
	args := m.Called(ctx, name, rawKeywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
