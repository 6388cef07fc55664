package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"gocatalog_api/internal/catalog/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var productUpsert = UpsertSpec{
	Schema: "catalog",
	Table:  "products",
	Columns: []string{
		"ean", "supplier_product_id", "name", "short_description",
		"long_description", "description_lang", "producer", "unit",
		"vat_rate", "active",
	},
	KeyColumns: []string{"ean"},
}

func (r *ProductRepository) UpsertBatch(ctx context.Context, batch []models.Product) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		rows = append(rows, []interface{}{
			p.EAN, p.SupplierProductID, p.Name, p.ShortDescription,
			p.LongDescription, p.DescriptionLang, p.Producer, p.Unit,
			p.VATRate, p.Active,
		})
	}
	return ExecuteBatch(ctx, r.db, productUpsert, rows)
}

// SetFeatured flips the manual is_featured flag for a set of products.
// The importer itself never writes this column.
func (r *ProductRepository) SetFeatured(ctx context.Context, eans []string, featured bool) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE catalog.products SET is_featured = $1, updated_at = NOW() WHERE ean = ANY($2)`,
		featured, pq.Array(eans))
	if err != nil {
		return 0, fmt.Errorf("failed to update featured flag: %w", err)
	}
	return result.RowsAffected()
}

func (r *ProductRepository) GetProductByEAN(ctx context.Context, ean string) (*models.Product, error) {
	query := `SELECT ean, supplier_product_id, name, short_description, long_description,
				description_lang, producer, unit, vat_rate, active, is_featured
			  FROM catalog.products WHERE ean = $1`

	var product models.Product
	err := r.db.QueryRowContext(ctx, query, ean).Scan(
		&product.EAN, &product.SupplierProductID, &product.Name,
		&product.ShortDescription, &product.LongDescription,
		&product.DescriptionLang, &product.Producer, &product.Unit,
		&product.VATRate, &product.Active, &product.IsFeatured,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// PurgeProduct removes a product together with its owned variants,
// prices, images, attributes and category links.
func (r *ProductRepository) PurgeProduct(ctx context.Context, ean string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge tx: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM catalog.prices WHERE variantid IN (SELECT variantid FROM catalog.product_variants WHERE ean = $1)`,
		`DELETE FROM catalog.product_variants WHERE ean = $1`,
		`DELETE FROM catalog.product_images WHERE ean = $1`,
		`DELETE FROM catalog.product_attributes WHERE product_ean = $1`,
		`DELETE FROM catalog.product_categories WHERE product_ean = $1`,
		`DELETE FROM catalog.products WHERE ean = $1`,
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement, ean); err != nil {
			return fmt.Errorf("purge product %s: %w", ean, err)
		}
	}
	return tx.Commit()
}
