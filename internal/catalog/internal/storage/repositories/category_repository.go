package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"gocatalog_api/internal/catalog/internal/models"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Category names preserve the stored value when the incoming observation
// is blank: a transient empty name must not blank out a known one.
var categoryUpsert = UpsertSpec{
	Schema:          "catalog",
	Table:           "categories",
	Columns:         []string{"categoryid", "name", "path"},
	KeyColumns:      []string{"categoryid"},
	PreserveIfEmpty: map[string]bool{"name": true},
}

var productCategoryInsert = UpsertSpec{
	Schema:     "catalog",
	Table:      "product_categories",
	Columns:    []string{"product_ean", "category_id"},
	KeyColumns: []string{"product_ean", "category_id"},
	NoUpdate:   true,
}

func (r *CategoryRepository) UpsertBatch(ctx context.Context, batch []models.Category) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, c := range batch {
		rows = append(rows, []interface{}{c.ID, c.Name, c.Path})
	}
	return ExecuteBatch(ctx, r.db, categoryUpsert, rows)
}

func (r *CategoryRepository) LinkProducts(ctx context.Context, batch []models.ProductCategory) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, link := range batch {
		rows = append(rows, []interface{}{link.EAN, link.CategoryID})
	}
	return ExecuteBatch(ctx, r.db, productCategoryInsert, rows)
}

// BackfillParents updates parent_id on already-inserted category rows in
// place. It runs after all category rows exist, so every referenced
// parent id is resolvable.
func (r *CategoryRepository) BackfillParents(ctx context.Context, batch []models.Category) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin parent backfill tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE catalog.categories SET parent_id = $1, updated_at = NOW()
		WHERE categoryid = $2 AND parent_id IS DISTINCT FROM $1`)
	if err != nil {
		return fmt.Errorf("prepare parent backfill: %w", err)
	}
	defer stmt.Close()

	for _, category := range batch {
		if category.ParentID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, category.ParentID, category.ID); err != nil {
			return fmt.Errorf("backfill parent for category %s: %w", category.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit parent backfill: %w", err)
	}
	return nil
}

// UnlinkedRoots lists categories whose paths imply a parent that was
// never resolved, for post-run verification.
func (r *CategoryRepository) UnlinkedRoots(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT categoryid, COALESCE(name, ''), COALESCE(path, '')
		FROM catalog.categories
		WHERE parent_id IS NULL AND path LIKE '%/%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked roots: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Path); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
