package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"gocatalog_api/internal/catalog/internal/models"
)

type PriceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

var priceUpsert = UpsertSpec{
	Schema:     "catalog",
	Table:      "prices",
	Columns:    []string{"variantid", "price_list_id", "price"},
	KeyColumns: []string{"variantid", "price_list_id"},
}

// UpsertBatch writes price entries last-write-wins. Promotional entries
// are a manual input: a batch containing one is rejected outright rather
// than letting the importer clobber hand-maintained rows.
func (r *PriceRepository) UpsertBatch(ctx context.Context, batch []models.PriceEntry) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, entry := range batch {
		if entry.PriceListID == models.PriceListPromotional {
			return fmt.Errorf("refusing to write promotional price for variant %s", entry.VariantID)
		}
		rows = append(rows, []interface{}{entry.VariantID, entry.PriceListID, entry.Price})
	}
	return ExecuteBatch(ctx, r.db, priceUpsert, rows)
}
