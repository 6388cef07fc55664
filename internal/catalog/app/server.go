package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"gocatalog_api/config"
	"gocatalog_api/internal/catalog/internal/business"
	"gocatalog_api/internal/catalog/internal/storage"
	"gocatalog_api/internal/supplier/feed"
	"gocatalog_api/pkg/business/service"
	"gocatalog_api/pkg/dbconnect"
	"gocatalog_api/pkg/dbconnect/migration"
	"gocatalog_api/pkg/logger"
)

const (
	lastImportRunKey    = "last_import_run"
	lastFeedModifiedKey = "last_feed_modified"
)

// ImportServer owns one reconciliation run: connect, migrate, stream the
// feed through the engine, report.
type ImportServer struct {
	dbconnect.DbConnector
	cfg *config.AppConfig
	log logger.Logger
}

func NewImportServer(connector dbconnect.DbConnector, cfg *config.AppConfig, log logger.Logger) *ImportServer {
	return &ImportServer{DbConnector: connector, cfg: cfg, log: log}
}

func (s *ImportServer) Run(ctx context.Context) error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	defer db.Close()

	migrationApply := []migration.MigrationInterface{
		&storage.MigrationsSchema{},
		&storage.CatalogSchema{},
		&storage.CatalogProducts{},
		&storage.CatalogCategories{},
		&storage.CatalogProductCategories{},
		&storage.CatalogVariants{},
		&storage.CatalogPriceLists{},
		&storage.CatalogPrices{},
		&storage.CatalogImages{},
		&storage.CatalogAttributes{},
		&storage.Metadata{},
	}
	for _, m := range migrationApply {
		if err := m.UpMigration(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	s.log.Log("Catalog migrations applied successfully")

	source, feedModified, err := s.openFeed(ctx)
	if err != nil {
		return fmt.Errorf("obtaining feed source: %w", err)
	}
	defer source.Close()

	pricing, err := business.NewPriceCalculator(s.cfg.Import.MarkupFraction)
	if err != nil {
		return err
	}

	store := storage.NewCatalogStore(db)

	// Skip the run entirely when the feed has not changed since the last
	// successful import. A source with no modification stamp always runs.
	if !feedModified.IsZero() {
		lastSeen, err := store.Metadata.LastUpdate(ctx, lastFeedModifiedKey)
		if err != nil {
			s.log.Log("WARN failed to read feed freshness stamp: %v", err)
		} else if !lastSeen.IsZero() && !feedModified.After(lastSeen) {
			s.log.Log("Feed unchanged since %s, skipping import", lastSeen.Format(time.RFC3339))
			return nil
		}
	}
	normalizer := business.NewNormalizer(service.NewTextService(), s.cfg.Import.PreferredLang, s.log)
	hierarchy := business.NewHierarchyBuilder(s.cfg.Import.MaxHierarchyPasses, s.log)
	engine := business.NewEngine(store, normalizer, hierarchy, pricing, s.cfg.Import.BatchSize, s.log)

	started := time.Now()
	summary, runErr := engine.Run(ctx, source)
	s.printSummary(summary, time.Since(started))

	if runErr == nil {
		// Post-run hierarchy verification: any category whose path implies
		// a parent but still has none is surfaced for operator attention.
		if roots, err := store.Categories.UnlinkedRoots(ctx); err != nil {
			s.log.Log("WARN failed to verify category hierarchy: %v", err)
		} else if len(roots) > 0 {
			for _, c := range roots {
				s.log.Log("WARN category %s (%q) has no resolved parent", c.ID, c.Path)
			}
		}
		if err := store.Metadata.SetLastUpdate(ctx, lastImportRunKey, time.Now()); err != nil {
			s.log.Log("WARN failed to record run timestamp: %v", err)
		}
		if !feedModified.IsZero() {
			if err := store.Metadata.SetLastUpdate(ctx, lastFeedModifiedKey, feedModified); err != nil {
				s.log.Log("WARN failed to record feed freshness stamp: %v", err)
			}
		}
	}
	return runErr
}

func (s *ImportServer) openFeed(ctx context.Context) (feed.Source, time.Time, error) {
	var fetcher feed.Fetcher
	location := s.cfg.Feed.Path
	if location != "" {
		fetcher = feed.NewFileFetcher()
	} else if s.cfg.Feed.URL != "" {
		fetcher = feed.NewHTTPFetcher()
		location = s.cfg.Feed.URL
	} else {
		return nil, time.Time{}, fmt.Errorf("no feed path or url configured")
	}

	body, modified, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, time.Time{}, err
	}
	source, err := feed.NewReader(body, s.cfg.Feed.Encoding)
	if err != nil {
		return nil, time.Time{}, err
	}
	return source, modified, nil
}

func (s *ImportServer) printSummary(summary *business.Summary, elapsed time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	s.log.Log("%s", green(fmt.Sprintf("Run finished in %s", elapsed.Round(time.Millisecond))))
	s.log.Log("Records seen: %d, skipped: %d, duplicates dropped: %d",
		summary.RecordsSeen, summary.RecordsSkipped, summary.DuplicatesDropped)
	s.log.Log("Upserted: %d products, %d categories (%d synthesized), %d links, %d variants, %d prices, %d images, %d attributes",
		summary.ProductsUpserted, summary.CategoriesUpserted, summary.CategoriesSynthesized,
		summary.LinksUpserted, summary.VariantsUpserted, summary.PriceEntriesUpserted,
		summary.ImagesUpserted, summary.AttributesUpserted)
	s.log.Log("Hierarchy: %d passes, %d unresolved roots", summary.HierarchyPasses, summary.UnresolvedRoots)
	s.log.Log("Selling prices skipped for missing cost data: %d", summary.PricesSkippedNoCost)

	if summary.Warnings > 0 {
		s.log.Log("%s", yellow(fmt.Sprintf("Warnings: %d", summary.Warnings)))
	}
	if summary.BatchFailures > 0 {
		s.log.Log("%s", red(fmt.Sprintf("Batch failures: %d", summary.BatchFailures)))
	}
}
