package repositories

import (
	"context"
	"database/sql"

	"gocatalog_api/internal/catalog/internal/models"
)

type VariantRepository struct {
	db *sql.DB
}

func NewVariantRepository(db *sql.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

var variantUpsert = UpsertSpec{
	Schema:     "catalog",
	Table:      "product_variants",
	Columns:    []string{"variantid", "ean", "name", "stock_quantity", "supplier_price", "on_sale"},
	KeyColumns: []string{"variantid"},
}

func (r *VariantRepository) UpsertBatch(ctx context.Context, batch []models.Variant) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, v := range batch {
		var price interface{}
		if v.SupplierPrice != nil {
			price = *v.SupplierPrice
		}
		rows = append(rows, []interface{}{v.ID, v.EAN, v.Name, v.Stock, price, v.OnSale})
	}
	return ExecuteBatch(ctx, r.db, variantUpsert, rows)
}
