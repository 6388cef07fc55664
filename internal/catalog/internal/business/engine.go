package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gocatalog_api/internal/catalog/internal/models"
	"gocatalog_api/internal/supplier/feed"
	"gocatalog_api/metrics"
	"gocatalog_api/pkg/logger"
)

// Store is the persistence boundary of the reconciliation engine. Every
// call receives one batch and is one unit of work: it either commits
// whole or rolls back whole, and repeated application with identical
// input changes nothing.
type Store interface {
	UpsertProducts(ctx context.Context, batch []models.Product) error
	UpsertCategories(ctx context.Context, batch []models.Category) error
	LinkProductCategories(ctx context.Context, batch []models.ProductCategory) error
	BackfillCategoryParents(ctx context.Context, batch []models.Category) error
	UpsertVariants(ctx context.Context, batch []models.Variant) error
	UpsertPrices(ctx context.Context, batch []models.PriceEntry) error
	UpsertImages(ctx context.Context, batch []models.Image) error
	UpsertAttributes(ctx context.Context, batch []models.Attribute) error
}

// Summary is the per-run report. Every skip and batch failure is counted
// here; nothing is swallowed silently.
type Summary struct {
	RecordsSeen           int
	RecordsSkipped        int
	DuplicatesDropped     int
	ProductsUpserted      int
	CategoriesUpserted    int
	CategoriesSynthesized int
	UnresolvedRoots       int
	HierarchyPasses       int
	LinksUpserted         int
	ParentsBackfilled     int
	VariantsUpserted      int
	PriceEntriesUpserted  int
	PricesSkippedNoCost   int
	ImagesUpserted        int
	AttributesUpserted    int
	Warnings              int
	BatchFailures         int
}

// Engine drives one reconciliation run: it streams the feed through the
// normalizer, accumulates category observations for the hierarchy
// builder, and merges everything into the store in fixed-size batches
// with at-least-once, idempotent semantics. A failed batch rolls back
// alone; the run continues with the next one.
type Engine struct {
	store      Store
	normalizer *Normalizer
	hierarchy  *HierarchyBuilder
	pricing    *PriceCalculator
	batchSize  int
	log        logger.Logger
}

func NewEngine(store Store, normalizer *Normalizer, hierarchy *HierarchyBuilder, pricing *PriceCalculator, batchSize int, log logger.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Engine{
		store:      store,
		normalizer: normalizer,
		hierarchy:  hierarchy,
		pricing:    pricing,
		batchSize:  batchSize,
		log:        log,
	}
}

// Run consumes the source to exhaustion and reconciles it into the store.
// The returned summary is valid even when err is non-nil; committed
// batches stay committed and an idempotent re-run picks up the remainder.
func (e *Engine) Run(ctx context.Context, src feed.Source) (*Summary, error) {
	summary := &Summary{}

	var (
		products     []models.Product
		observations []models.CategoryObservation
		links        []models.ProductCategory
		variants     []models.Variant
		images       []models.Image
		attributes   []models.Attribute
	)
	seenEAN := make(map[string]bool)
	seenLink := make(map[models.ProductCategory]bool)
	seenVariant := make(map[string]bool)
	seenImage := make(map[string]bool)
	seenAttribute := make(map[string]bool)

	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("reading feed record: %w", err)
		}

		summary.RecordsSeen++
		metrics.RecordProcessed()

		// Dedup and the empty check run on the trimmed EAN, the same form
		// the normalizer persists under.
		ean := strings.TrimSpace(record.EAN)
		if ean == "" {
			e.warn(summary, "record %d has no EAN, skipped", summary.RecordsSeen)
			summary.RecordsSkipped++
			continue
		}
		if seenEAN[ean] {
			e.warn(summary, "duplicate EAN %s in feed, later occurrence dropped", ean)
			summary.DuplicatesDropped++
			continue
		}
		seenEAN[ean] = true

		normalized, warnings := e.normalizer.Normalize(record)
		summary.Warnings += warnings
		for i := 0; i < warnings; i++ {
			metrics.Warning()
		}

		products = append(products, normalized.Product)
		observations = append(observations, normalized.Categories...)
		for _, link := range normalized.Links {
			if !seenLink[link] {
				seenLink[link] = true
				links = append(links, link)
			}
		}
		for _, variant := range normalized.Variants {
			if seenVariant[variant.ID] {
				e.warn(summary, "duplicate variant %s, later occurrence dropped", variant.ID)
				continue
			}
			seenVariant[variant.ID] = true
			variants = append(variants, variant)
		}
		for _, image := range normalized.Images {
			key := image.EAN + "|" + image.URL
			if !seenImage[key] {
				seenImage[key] = true
				images = append(images, image)
			}
		}
		for _, attribute := range normalized.Attributes {
			key := attribute.EAN + "|" + attribute.Key
			if !seenAttribute[key] {
				seenAttribute[key] = true
				attributes = append(attributes, attribute)
			}
		}

		// Products flush as the stream advances; everything that depends
		// on the full category set waits for stream end.
		if len(products) >= e.batchSize {
			if err := flushInBatches(ctx, e, summary, "product", products, e.store.UpsertProducts, &summary.ProductsUpserted); err != nil {
				return summary, err
			}
			products = products[:0]
		}
	}

	if err := flushInBatches(ctx, e, summary, "product", products, e.store.UpsertProducts, &summary.ProductsUpserted); err != nil {
		return summary, err
	}

	// The hierarchy can only be resolved once every observation has been
	// seen; categories must be persisted before links and before the
	// in-place parent backfill.
	tree := e.hierarchy.Build(observations)
	summary.Warnings += tree.Warnings
	summary.CategoriesSynthesized = tree.Synthesized
	summary.UnresolvedRoots = tree.UnresolvedRoots
	summary.HierarchyPasses = tree.Passes
	metrics.CategoriesSynthesized(tree.Synthesized)

	if err := flushInBatches(ctx, e, summary, "category", tree.Categories, e.store.UpsertCategories, &summary.CategoriesUpserted); err != nil {
		return summary, err
	}
	if err := flushInBatches(ctx, e, summary, "product_category", links, e.store.LinkProductCategories, &summary.LinksUpserted); err != nil {
		return summary, err
	}

	withParents := make([]models.Category, 0, len(tree.Categories))
	for _, category := range tree.Categories {
		if category.ParentID != "" {
			withParents = append(withParents, category)
		}
	}
	if err := flushInBatches(ctx, e, summary, "category_parent", withParents, e.store.BackfillCategoryParents, &summary.ParentsBackfilled); err != nil {
		return summary, err
	}

	if err := flushInBatches(ctx, e, summary, "variant", variants, e.store.UpsertVariants, &summary.VariantsUpserted); err != nil {
		return summary, err
	}

	var prices []models.PriceEntry
	seenPrice := make(map[string]bool)
	for _, variant := range variants {
		entries := e.pricing.Entries(variant.ID, variant.SupplierPrice)
		if variant.SupplierPrice == nil || !variant.SupplierPrice.IsPositive() {
			summary.PricesSkippedNoCost++
		}
		for _, entry := range entries {
			key := fmt.Sprintf("%s|%d", entry.VariantID, entry.PriceListID)
			if !seenPrice[key] {
				seenPrice[key] = true
				prices = append(prices, entry)
			}
		}
	}
	if err := flushInBatches(ctx, e, summary, "price", prices, e.store.UpsertPrices, &summary.PriceEntriesUpserted); err != nil {
		return summary, err
	}

	if err := flushInBatches(ctx, e, summary, "image", images, e.store.UpsertImages, &summary.ImagesUpserted); err != nil {
		return summary, err
	}
	if err := flushInBatches(ctx, e, summary, "attribute", attributes, e.store.UpsertAttributes, &summary.AttributesUpserted); err != nil {
		return summary, err
	}

	return summary, nil
}

// flushInBatches submits items in engine-sized batches. A failing batch is
// counted and logged, then processing continues with the next batch; only
// cancellation aborts the run.
func flushInBatches[T any](ctx context.Context, e *Engine, summary *Summary, kind string, items []T, upsert func(context.Context, []T) error, upserted *int) error {
	for start := 0; start < len(items); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + e.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		if err := upsert(ctx, batch); err != nil {
			summary.BatchFailures++
			metrics.BatchFailure()
			e.logf("ERROR %s batch of %d failed, rolled back, continuing: %v", kind, len(batch), err)
			continue
		}
		*upserted += len(batch)
		metrics.EntitiesUpserted(kind, len(batch))
	}
	return nil
}

func (e *Engine) warn(summary *Summary, format string, v ...interface{}) {
	summary.Warnings++
	metrics.Warning()
	e.logf("WARN "+format, v...)
}

func (e *Engine) logf(format string, v ...interface{}) {
	if e.log != nil {
		e.log.Log(format, v...)
	}
}
