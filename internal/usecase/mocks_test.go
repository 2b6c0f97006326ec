package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
)

// MockSequenceClassifier is a mock implementation of SequenceClassifier
type MockSequenceClassifier struct {
	mock.Mock
}

func (m *MockSequenceClassifier) Logits(text string) ([]float32, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockSequenceClassifier) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockModelOpener is a mock implementation of ModelOpener
type MockModelOpener struct {
	mock.Mock
}

func (m *MockModelOpener) Open(dir string) (service.SequenceClassifier, error) {
	args := m.Called(dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.SequenceClassifier), args.Error(1)
}

// MockModelFetcher is a mock implementation of ModelFetcher
type MockModelFetcher struct {
	mock.Mock
}

func (m *MockModelFetcher) Fetch(ctx context.Context, modelID, file, dst string) error {
	args := m.Called(ctx, modelID, file, dst)
	return args.Error(0)
}

// memoryCache is an in-memory ResultCache
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*entity.ClassificationResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*entity.ClassificationResult)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*entity.ClassificationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *memoryCache) Set(_ context.Context, key string, result *entity.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}
