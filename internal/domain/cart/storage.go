package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageKey is the fixed key the cart record is written under.
const StorageKey = "storefront:cart"

// Storage is the durable key-value port the engine writes through to.
// Load returns (nil, nil) when nothing is stored under key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// record is the persisted form of a cart. LastAddedProductID is transient
// and deliberately absent.
type record struct {
	Lines             []Line  `json:"lines"`
	OwnerRestaurantID *string `json:"owner_restaurant_id"`
}

func encodeState(s State) ([]byte, error) {
	rec := record{Lines: s.Lines}
	if rec.Lines == nil {
		rec.Lines = []Line{}
	}
	if s.OwnerRestaurantID != "" {
		owner := s.OwnerRestaurantID
		rec.OwnerRestaurantID = &owner
	}
	return json.Marshal(rec)
}

// decodeState parses and validates a stored record. Any structural problem
// is reported as ErrCorruptRecord so the caller can start from empty.
func decodeState(data []byte) (State, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if len(rec.Lines) == 0 {
		return State{}, nil
	}
	if rec.OwnerRestaurantID == nil || *rec.OwnerRestaurantID == "" {
		return State{}, fmt.Errorf("%w: lines without an owner restaurant", ErrCorruptRecord)
	}

	owner := *rec.OwnerRestaurantID
	seen := make(map[string]struct{}, len(rec.Lines))
	for i, line := range rec.Lines {
		switch {
		case line.LineID == "":
			return State{}, fmt.Errorf("%w: line %d has no line_id", ErrCorruptRecord, i)
		case line.ProductID == "":
			return State{}, fmt.Errorf("%w: line %d has no product_id", ErrCorruptRecord, i)
		case line.Quantity < 1 || line.Quantity > MaxLineQuantity:
			return State{}, fmt.Errorf("%w: line %d has quantity %d", ErrCorruptRecord, i, line.Quantity)
		case line.RestaurantID != owner:
			return State{}, fmt.Errorf("%w: line %d belongs to restaurant %q, cart to %q", ErrCorruptRecord, i, line.RestaurantID, owner)
		}
		if _, dup := seen[line.LineID]; dup {
			return State{}, fmt.Errorf("%w: duplicate line_id %q", ErrCorruptRecord, line.LineID)
		}
		seen[line.LineID] = struct{}{}
	}

	return State{Lines: rec.Lines, OwnerRestaurantID: owner}, nil
}

// ScopedStorage namespaces every key under scope, so one backend can hold
// the carts of many sessions while each engine still uses StorageKey.
func ScopedStorage(inner Storage, scope string) Storage {
	return &scopedStorage{inner: inner, prefix: "session:" + scope + ":"}
}

type scopedStorage struct {
	inner  Storage
	prefix string
}

func (s *scopedStorage) Load(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Load(ctx, s.prefix+key)
}

func (s *scopedStorage) Save(ctx context.Context, key string, data []byte) error {
	return s.inner.Save(ctx, s.prefix+key, data)
}
