package repositories

import (
	"context"
	"database/sql"

	"gocatalog_api/internal/catalog/internal/models"
)

type AttributeRepository struct {
	db *sql.DB
}

func NewAttributeRepository(db *sql.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

var attributeUpsert = UpsertSpec{
	Schema:     "catalog",
	Table:      "product_attributes",
	Columns:    []string{"product_ean", "key", "value"},
	KeyColumns: []string{"product_ean", "key"},
}

func (r *AttributeRepository) UpsertBatch(ctx context.Context, batch []models.Attribute) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, attr := range batch {
		rows = append(rows, []interface{}{attr.EAN, attr.Key, attr.Value})
	}
	return ExecuteBatch(ctx, r.db, attributeUpsert, rows)
}
