package storage

import (
	"context"
	"database/sql"

	"gocatalog_api/internal/catalog/internal/models"
	"gocatalog_api/internal/catalog/internal/storage/repositories"
)

// CatalogStore aggregates the per-kind repositories behind the engine's
// store boundary. Each method is one batched unit of work.
type CatalogStore struct {
	Products   *repositories.ProductRepository
	Categories *repositories.CategoryRepository
	Variants   *repositories.VariantRepository
	Prices     *repositories.PriceRepository
	Media      *repositories.MediaRepository
	Attributes *repositories.AttributeRepository
	Metadata   *repositories.MetadataRepository
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{
		Products:   repositories.NewProductRepository(db),
		Categories: repositories.NewCategoryRepository(db),
		Variants:   repositories.NewVariantRepository(db),
		Prices:     repositories.NewPriceRepository(db),
		Media:      repositories.NewMediaRepository(db),
		Attributes: repositories.NewAttributeRepository(db),
		Metadata:   repositories.NewMetadataRepository(db),
	}
}

func (s *CatalogStore) UpsertProducts(ctx context.Context, batch []models.Product) error {
	return s.Products.UpsertBatch(ctx, batch)
}

func (s *CatalogStore) UpsertCategories(ctx context.Context, batch []models.Category) error {
	return s.Categories.UpsertBatch(ctx, batch)
}

func (s *CatalogStore) LinkProductCategories(ctx context.Context, batch []models.ProductCategory) error {
	return s.Categories.LinkProducts(ctx, batch)
}

func (s *CatalogStore) BackfillCategoryParents(ctx context.Context, batch []models.Category) error {
	return s.Categories.BackfillParents(ctx, batch)
}

func (s *CatalogStore) UpsertVariants(ctx context.Context, batch []models.Variant) error {
	return s.Variants.UpsertBatch(ctx, batch)
}

func (s *CatalogStore) UpsertPrices(ctx context.Context, batch []models.PriceEntry) error {
	return s.Prices.UpsertBatch(ctx, batch)
}

func (s *CatalogStore) UpsertImages(ctx context.Context, batch []models.Image) error {
	return s.Media.UpsertBatch(ctx, batch)
}

func (s *CatalogStore) UpsertAttributes(ctx context.Context, batch []models.Attribute) error {
	return s.Attributes.UpsertBatch(ctx, batch)
}
