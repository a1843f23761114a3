package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// ReadStore is an in-memory ReadStoreInterface. Documents are held as JSON
// so callers get the same copy semantics as with Postgres.
type ReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage // collection -> id -> document
}

func NewReadStore() *ReadStore {
	return &ReadStore{data: make(map[string]map[string]json.RawMessage)}
}

func (rs *ReadStore) Set(_ context.Context, collection, id string, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]json.RawMessage)
	}
	rs.data[collection][id] = doc
	return nil
}

func (rs *ReadStore) Get(_ context.Context, collection, id string, dst any) (bool, error) {
	rs.mu.RLock()
	doc, ok := rs.data[collection][id]
	rs.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// GetAll returns documents ordered by id.
func (rs *ReadStore) GetAll(_ context.Context, collection string) ([]json.RawMessage, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return sortedDocs(rs.data[collection], nil), nil
}

func (rs *ReadStore) FindBy(_ context.Context, collection, field, value string) ([]json.RawMessage, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return sortedDocs(rs.data[collection], func(doc json.RawMessage) bool {
		var fields map[string]any
		if err := json.Unmarshal(doc, &fields); err != nil {
			return false
		}
		s, ok := fields[field].(string)
		return ok && s == value
	}), nil
}

func (rs *ReadStore) Delete(_ context.Context, collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.data[collection], id)
	return nil
}

func sortedDocs(docs map[string]json.RawMessage, keep func(json.RawMessage) bool) []json.RawMessage {
	ids := make([]string, 0, len(docs))
	for id, doc := range docs {
		if keep == nil || keep(doc) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, len(ids))
	for i, id := range ids {
		out[i] = docs[id]
	}
	return out
}
