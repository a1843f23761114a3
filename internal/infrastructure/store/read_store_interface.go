package store

import (
	"context"
	"encoding/json"
)

// ReadStoreInterface defines the interface for read model storage.
// Models are kept as JSON documents grouped by collection.
type ReadStoreInterface interface {
	// Set stores a read model, replacing any previous value
	Set(ctx context.Context, collection, id string, data any) error

	// Get decodes the read model into dst. found is false when id is absent.
	Get(ctx context.Context, collection, id string, dst any) (found bool, err error)

	// GetAll returns every document in a collection
	GetAll(ctx context.Context, collection string) ([]json.RawMessage, error)

	// FindBy returns documents whose top-level string field equals value
	FindBy(ctx context.Context, collection, field, value string) ([]json.RawMessage, error)

	// Delete removes a read model. Missing ids are not an error.
	Delete(ctx context.Context, collection, id string) error
}
