package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ExtractionStore persists extraction results keyed by image hash. It
// implements vision.Cache.
type ExtractionStore struct {
	db *sql.DB
}

func NewExtractionStore(db *sql.DB) *ExtractionStore {
	return &ExtractionStore{db: db}
}

// Get returns the cached names for key and whether an entry existed.
func (s *ExtractionStore) Get(ctx context.Context, key string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT ingredients FROM extractions WHERE image_hash = ?
	`, key).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get extraction: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return names, true, nil
}

// Put stores names under key, replacing any previous entry.
func (s *ExtractionStore) Put(ctx context.Context, key string, names []string) error {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode extraction: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (image_hash, ingredients) VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET ingredients = excluded.ingredients, created_at = datetime('now')
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to store extraction: %w", err)
	}
	return nil
}

// Count returns the number of cached extractions.
func (s *ExtractionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extractions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count extractions: %w", err)
	}
	return n, nil
}
