package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetProductByEAN(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	columns := []string{
		"ean", "supplier_product_id", "name", "short_description",
		"long_description", "description_lang", "producer", "unit",
		"vat_rate", "active", "is_featured",
	}
	mock.ExpectQuery("SELECT ean, supplier_product_id, name").
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("123", "SUP-1", "Widget", "short", "long", "eng", "ToolCo", "pcs", "23", true, false))

	product, err := repo.GetProductByEAN(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetProductByEAN: %v", err)
	}
	if product == nil || product.EAN != "123" || product.Name != "Widget" || !product.Active {
		t.Fatalf("unexpected product: %+v", product)
	}
	expectMet(t, mock)
}

func TestGetProductByEAN_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT ean, supplier_product_id, name").
		WithArgs("999").
		WillReturnError(sql.ErrNoRows)

	product, err := repo.GetProductByEAN(context.Background(), "999")
	if err != nil {
		t.Fatalf("a missing product is not an error: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil for a missing product, got %+v", product)
	}
	expectMet(t, mock)
}

func TestSetFeatured(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.products SET is_featured = $1, updated_at = NOW() WHERE ean = ANY($2)`)).
		WithArgs(true, pq.Array([]string{"1", "2"})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.SetFeatured(context.Background(), []string{"1", "2"}, true)
	if err != nil {
		t.Fatalf("SetFeatured: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 rows affected, got %d", affected)
	}
	expectMet(t, mock)
}

func TestPurgeProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	for _, fragment := range []string{
		`DELETE FROM catalog.prices WHERE variantid IN`,
		`DELETE FROM catalog.product_variants WHERE ean =`,
		`DELETE FROM catalog.product_images WHERE ean =`,
		`DELETE FROM catalog.product_attributes WHERE product_ean =`,
		`DELETE FROM catalog.product_categories WHERE product_ean =`,
		`DELETE FROM catalog.products WHERE ean =`,
	} {
		mock.ExpectExec(regexp.QuoteMeta(fragment)).
			WithArgs("123").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := repo.PurgeProduct(context.Background(), "123"); err != nil {
		t.Fatalf("PurgeProduct: %v", err)
	}
	expectMet(t, mock)
}

func TestPurgeProduct_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.prices WHERE variantid IN`)).
		WithArgs("123").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := repo.PurgeProduct(context.Background(), "123"); err == nil {
		t.Fatalf("expected the delete error to surface")
	}
	expectMet(t, mock)
}
