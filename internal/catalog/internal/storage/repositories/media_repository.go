package repositories

import (
	"context"
	"database/sql"

	"gocatalog_api/internal/catalog/internal/models"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

var imageUpsert = UpsertSpec{
	Schema:     "catalog",
	Table:      "product_images",
	Columns:    []string{"ean", "url", "alt", "is_primary", "sort_order"},
	KeyColumns: []string{"ean", "url"},
}

func (r *MediaRepository) UpsertBatch(ctx context.Context, batch []models.Image) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, img := range batch {
		rows = append(rows, []interface{}{img.EAN, img.URL, img.Alt, img.IsPrimary, img.SortOrder})
	}
	return ExecuteBatch(ctx, r.db, imageUpsert, rows)
}
