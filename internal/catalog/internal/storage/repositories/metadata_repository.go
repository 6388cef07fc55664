package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MetadataRepository tracks feed freshness stamps so an unchanged feed
// can be skipped entirely.
type MetadataRepository struct {
	db *sql.DB
}

func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func (r *MetadataRepository) LastUpdate(ctx context.Context, key string) (time.Time, error) {
	var stored time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT last_update FROM catalog.metadata WHERE key_name = $1", key).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return stored, nil
}

func (r *MetadataRepository) SetLastUpdate(ctx context.Context, key string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog.metadata (key_name, last_update)
		VALUES ($1, $2)
		ON CONFLICT (key_name) DO UPDATE SET last_update = EXCLUDED.last_update`,
		key, t)
	if err != nil {
		return fmt.Errorf("failed to store metadata %s: %w", key, err)
	}
	return nil
}
