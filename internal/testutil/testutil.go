package testutil

import (
	"context"
	"testing"

	"socialmetrics/internal/service"
	"socialmetrics/internal/store"
)

// OpenStore opens an in-memory record store that is closed when the test
// finishes.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// MockAdapter is a mock implementation of the service.Adapter interface
type MockAdapter struct {
	GetFunc     func(ctx context.Context, useCache bool) (service.Result, error)
	HistoryFunc func(ctx context.Context) ([]service.HistoryEntry, error)
	AllFunc     func(ctx context.Context, unique bool) ([]store.FetchRecord, error)
	KeyFunc     func() string
}

// Get implements the Adapter interface
func (m *MockAdapter) Get(ctx context.Context, useCache bool) (service.Result, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, useCache)
	}
	return service.Result{}, nil
}

// History implements the Adapter interface
func (m *MockAdapter) History(ctx context.Context) ([]service.HistoryEntry, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx)
	}
	return nil, nil
}

// All implements the Adapter interface
func (m *MockAdapter) All(ctx context.Context, unique bool) ([]store.FetchRecord, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx, unique)
	}
	return nil, nil
}

// Key implements the Adapter interface
func (m *MockAdapter) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "adapter:mock:subject"
}

// NewMockAdapter creates a simple mock adapter with predefined values
func NewMockAdapter(key string, result service.Result, err error) service.Adapter {
	return &MockAdapter{
		GetFunc: func(ctx context.Context, useCache bool) (service.Result, error) {
			return result, err
		},
		KeyFunc: func() string {
			return key
		},
	}
}
