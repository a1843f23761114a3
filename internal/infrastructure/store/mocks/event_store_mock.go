package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/infrastructure/store"
)

// MockEventStore is an EventStoreInterface for tests. It behaves like the
// in-memory store and records every Append.
type MockEventStore struct {
	*store.EventStore

	mu sync.Mutex
	// For tracking calls in tests
	AppendCalls       []AppendCall
	AppendErr         error
	AppendErrFor      map[string]error // by event type, checked after AppendErr
	SaveSnapshotCalls []*store.Snapshot
}

// AppendCall records parameters passed to Append
type AppendCall struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
}

// NewMockEventStore creates a new MockEventStore
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{EventStore: store.NewEventStore(nil)}
}

func (m *MockEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	m.mu.Lock()
	m.AppendCalls = append(m.AppendCalls, AppendCall{
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
	})
	err := m.AppendErr
	if err == nil {
		err = m.AppendErrFor[eventType]
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.EventStore.Append(ctx, aggregateID, aggregateType, eventType, data)
}

func (m *MockEventStore) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	m.SaveSnapshotCalls = append(m.SaveSnapshotCalls, snapshot)
	m.mu.Unlock()
	return m.EventStore.SaveSnapshot(ctx, snapshot)
}

// EventTypes lists the recorded Append event types in call order.
func (m *MockEventStore) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.AppendCalls))
	for i, c := range m.AppendCalls {
		types[i] = c.EventType
	}
	return types
}

// Reset clears recorded calls and injected errors. Stored events are kept.
func (m *MockEventStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = nil
	m.AppendErr = nil
	m.AppendErrFor = nil
	m.SaveSnapshotCalls = nil
}
