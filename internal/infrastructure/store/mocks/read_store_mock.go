package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/infrastructure/store"
)

// MockReadStore is a ReadStoreInterface for tests backed by the in-memory
// read store. It records writes and can be made to fail.
type MockReadStore struct {
	*store.ReadStore

	mu sync.Mutex
	// For tracking calls in tests
	SetCalls    []SetCall
	DeleteCalls []DeleteCall
	SetErr      error
	GetErr      error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Collection string
	ID         string
	Data       any
}

// DeleteCall records parameters passed to Delete
type DeleteCall struct {
	Collection string
	ID         string
}

// NewMockReadStore creates a new MockReadStore
func NewMockReadStore() *MockReadStore {
	return &MockReadStore{ReadStore: store.NewReadStore()}
}

func (m *MockReadStore) Set(ctx context.Context, collection, id string, data any) error {
	m.mu.Lock()
	m.SetCalls = append(m.SetCalls, SetCall{Collection: collection, ID: id, Data: data})
	err := m.SetErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.ReadStore.Set(ctx, collection, id, data)
}

func (m *MockReadStore) Get(ctx context.Context, collection, id string, dst any) (bool, error) {
	m.mu.Lock()
	err := m.GetErr
	m.mu.Unlock()

	if err != nil {
		return false, err
	}
	return m.ReadStore.Get(ctx, collection, id, dst)
}

func (m *MockReadStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{Collection: collection, ID: id})
	m.mu.Unlock()
	return m.ReadStore.Delete(ctx, collection, id)
}
