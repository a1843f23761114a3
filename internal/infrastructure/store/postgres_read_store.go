package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresReadStore implements ReadStoreInterface on a single JSONB table,
// read_models(collection, id, data).
type PostgresReadStore struct {
	db *sql.DB
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

func (rs *PostgresReadStore) Set(ctx context.Context, collection, id string, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}
	_, err = rs.db.ExecContext(ctx,
		`INSERT INTO read_models (collection, id, data, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (collection, id) DO UPDATE SET
		   data = EXCLUDED.data,
		   updated_at = NOW()`,
		collection, id, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (rs *PostgresReadStore) Get(ctx context.Context, collection, id string, dst any) (bool, error) {
	var doc []byte
	err := rs.db.QueryRowContext(ctx,
		`SELECT data FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (rs *PostgresReadStore) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	return rs.query(ctx,
		`SELECT data FROM read_models WHERE collection = $1 ORDER BY id`,
		collection,
	)
}

func (rs *PostgresReadStore) FindBy(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	return rs.query(ctx,
		`SELECT data FROM read_models WHERE collection = $1 AND data->>$2 = $3 ORDER BY id`,
		collection, field, value,
	)
}

func (rs *PostgresReadStore) Delete(ctx context.Context, collection, id string) error {
	_, err := rs.db.ExecContext(ctx,
		`DELETE FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (rs *PostgresReadStore) query(ctx context.Context, q string, args ...any) ([]json.RawMessage, error) {
	rows, err := rs.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query read models: %w", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan read model: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
