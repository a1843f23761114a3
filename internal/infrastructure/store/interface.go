package store

import (
	"context"
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when another writer stored
	// the same aggregate version first.
	ErrConcurrencyConflict = errors.New("aggregate version already exists")
)

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)
	// GetEventsFromVersion returns events with a version strictly greater
	// than fromVersion, oldest first.
	GetEventsFromVersion(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)

	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	// GetSnapshot returns (nil, nil) when the aggregate has no snapshot.
	GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error)
}

// Publisher pushes stored events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
