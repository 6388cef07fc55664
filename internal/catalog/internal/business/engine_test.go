package business

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"gocatalog_api/internal/catalog/internal/models"
	"gocatalog_api/internal/supplier/feed"
	"gocatalog_api/pkg/business/service"
)

type sliceSource struct {
	records []*feed.ProductRecord
	next    int
	err     error
}

func (s *sliceSource) Next() (*feed.ProductRecord, error) {
	if s.next >= len(s.records) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	record := s.records[s.next]
	s.next++
	return record, nil
}

func (s *sliceSource) Close() error { return nil }

// fakeStore keeps everything in maps and counts net mutations so tests
// can assert that a repeat run changes nothing. failBatches makes the
// next N batches of a kind fail atomically.
type fakeStore struct {
	products   map[string]models.Product
	categories map[string]models.Category
	links      map[models.ProductCategory]bool
	variants   map[string]models.Variant
	prices     map[string]models.PriceEntry
	images     map[string]models.Image
	attributes map[string]models.Attribute

	mutations   int
	failBatches map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:    make(map[string]models.Product),
		categories:  make(map[string]models.Category),
		links:       make(map[models.ProductCategory]bool),
		variants:    make(map[string]models.Variant),
		prices:      make(map[string]models.PriceEntry),
		images:      make(map[string]models.Image),
		attributes:  make(map[string]models.Attribute),
		failBatches: make(map[string]int),
	}
}

func (s *fakeStore) maybeFail(kind string) error {
	if s.failBatches[kind] > 0 {
		s.failBatches[kind]--
		return errors.New(kind + " batch rejected")
	}
	return nil
}

func (s *fakeStore) UpsertProducts(_ context.Context, batch []models.Product) error {
	if err := s.maybeFail("product"); err != nil {
		return err
	}
	for _, p := range batch {
		if existing, ok := s.products[p.EAN]; !ok || !reflect.DeepEqual(existing, p) {
			s.products[p.EAN] = p
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) UpsertCategories(_ context.Context, batch []models.Category) error {
	if err := s.maybeFail("category"); err != nil {
		return err
	}
	for _, c := range batch {
		stored := c
		stored.ParentID = s.categories[c.ID].ParentID // parents arrive via backfill
		if existing, ok := s.categories[c.ID]; !ok || !reflect.DeepEqual(existing, stored) {
			s.categories[c.ID] = stored
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) LinkProductCategories(_ context.Context, batch []models.ProductCategory) error {
	if err := s.maybeFail("product_category"); err != nil {
		return err
	}
	for _, link := range batch {
		if !s.links[link] {
			s.links[link] = true
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) BackfillCategoryParents(_ context.Context, batch []models.Category) error {
	if err := s.maybeFail("category_parent"); err != nil {
		return err
	}
	for _, c := range batch {
		existing, ok := s.categories[c.ID]
		if !ok || existing.ParentID == c.ParentID {
			continue
		}
		existing.ParentID = c.ParentID
		s.categories[c.ID] = existing
		s.mutations++
	}
	return nil
}

func (s *fakeStore) UpsertVariants(_ context.Context, batch []models.Variant) error {
	if err := s.maybeFail("variant"); err != nil {
		return err
	}
	for _, v := range batch {
		if existing, ok := s.variants[v.ID]; !ok || !reflect.DeepEqual(existing, v) {
			s.variants[v.ID] = v
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) UpsertPrices(_ context.Context, batch []models.PriceEntry) error {
	if err := s.maybeFail("price"); err != nil {
		return err
	}
	for _, entry := range batch {
		key := entry.VariantID + "|" + string(rune('0'+entry.PriceListID))
		if existing, ok := s.prices[key]; !ok || !existing.Price.Equal(entry.Price) {
			s.prices[key] = entry
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) UpsertImages(_ context.Context, batch []models.Image) error {
	if err := s.maybeFail("image"); err != nil {
		return err
	}
	for _, img := range batch {
		key := img.EAN + "|" + img.URL
		if existing, ok := s.images[key]; !ok || !reflect.DeepEqual(existing, img) {
			s.images[key] = img
			s.mutations++
		}
	}
	return nil
}

func (s *fakeStore) UpsertAttributes(_ context.Context, batch []models.Attribute) error {
	if err := s.maybeFail("attribute"); err != nil {
		return err
	}
	for _, a := range batch {
		key := a.EAN + "|" + a.Key
		if existing, ok := s.attributes[key]; !ok || !reflect.DeepEqual(existing, a) {
			s.attributes[key] = a
			s.mutations++
		}
	}
	return nil
}

func newTestEngine(t *testing.T, store Store, batchSize int) *Engine {
	t.Helper()
	pricing, err := NewPriceCalculator("0.25")
	if err != nil {
		t.Fatalf("NewPriceCalculator: %v", err)
	}
	normalizer := NewNormalizer(service.NewTextService(), "eng", nil)
	hierarchy := NewHierarchyBuilder(0, nil)
	return NewEngine(store, normalizer, hierarchy, pricing, batchSize, nil)
}

func sampleRecords() []*feed.ProductRecord {
	return []*feed.ProductRecord{
		{
			EAN:  "100",
			ID:   "SUP-100",
			Card: "Hammer",
			Categories: []feed.CategoryRef{
				{ID: "", Name: "Tools", Path: "Tools"},
				{ID: "7", Name: "Hand Tools", Path: "Tools/Hand Tools"},
			},
			Sizes: []feed.SizeRecord{
				{Code: "uniw", Stock: &feed.StockRef{Quantity: "5"}, Price: &feed.PriceRef{Net: "10.00"}},
			},
			LargeImages: []feed.ImageRef{{URL: "https://img.example/hammer.jpg"}},
			Descriptions: []feed.Description{
				{Lang: "eng", Name: "Hammer", LongDesc: "<h3>Technical data:</h3><p>Weight: 0.5 kg</p>"},
			},
		},
		{
			EAN:  "200",
			ID:   "SUP-200",
			Card: "Drill",
			Categories: []feed.CategoryRef{
				{ID: "7", Name: "Hand Tools", Path: "Tools/Hand Tools"},
			},
			Sizes: []feed.SizeRecord{
				{Code: "M", Price: &feed.PriceRef{Net: "20.00"}},
			},
		},
	}
}

func TestRun_FullPipeline(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	summary, err := engine.Run(context.Background(), &sliceSource{records: sampleRecords()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.RecordsSeen != 2 || summary.ProductsUpserted != 2 {
		t.Fatalf("unexpected product counts: %+v", summary)
	}
	if summary.BatchFailures != 0 {
		t.Fatalf("unexpected batch failures: %d", summary.BatchFailures)
	}

	// "Tools" has no observed id anywhere in the feed, so it must be
	// synthesized; the observed "7" hangs under it.
	if summary.CategoriesSynthesized != 1 {
		t.Fatalf("expected 1 synthesized category, got %d", summary.CategoriesSynthesized)
	}
	root, ok := store.categories["GEN_TOOLS"]
	if !ok {
		t.Fatalf("missing synthesized root: %v", store.categories)
	}
	if root.ParentID != "" {
		t.Fatalf("root should have no parent, got %q", root.ParentID)
	}
	hand, ok := store.categories["7"]
	if !ok || hand.ParentID != "GEN_TOOLS" {
		t.Fatalf("expected category 7 under GEN_TOOLS, got %+v", hand)
	}

	if !store.links[models.ProductCategory{EAN: "100", CategoryID: "7"}] ||
		!store.links[models.ProductCategory{EAN: "200", CategoryID: "7"}] {
		t.Fatalf("missing product-category links: %v", store.links)
	}

	if len(store.variants) != 2 {
		t.Fatalf("expected 2 variants, got %v", store.variants)
	}
	if v := store.variants["100-uniw"]; v.Stock != 5 {
		t.Fatalf("unexpected variant stock: %+v", v)
	}

	// Each priced variant yields a supplier entry and a derived selling
	// entry.
	if summary.PriceEntriesUpserted != 4 {
		t.Fatalf("expected 4 price entries, got %d", summary.PriceEntriesUpserted)
	}
	if summary.PricesSkippedNoCost != 0 {
		t.Fatalf("unexpected costless skips: %d", summary.PricesSkippedNoCost)
	}

	if summary.ImagesUpserted != 1 || summary.AttributesUpserted != 1 {
		t.Fatalf("unexpected media counts: %+v", summary)
	}
}

func TestRun_SecondRunChangesNothing(t *testing.T) {
	store := newFakeStore()

	if _, err := newTestEngine(t, store, 0).Run(context.Background(), &sliceSource{records: sampleRecords()}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	afterFirst := store.mutations
	if afterFirst == 0 {
		t.Fatalf("first run wrote nothing")
	}

	summary, err := newTestEngine(t, store, 0).Run(context.Background(), &sliceSource{records: sampleRecords()})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if store.mutations != afterFirst {
		t.Fatalf("second run mutated the store: %d -> %d", afterFirst, store.mutations)
	}
	if summary.BatchFailures != 0 {
		t.Fatalf("second run reported failures: %+v", summary)
	}
}

func TestRun_FailedBatchIsIsolated(t *testing.T) {
	store := newFakeStore()
	store.failBatches["product"] = 1
	engine := newTestEngine(t, store, 1)

	records := []*feed.ProductRecord{
		{EAN: "1", Card: "One"},
		{EAN: "2", Card: "Two"},
		{EAN: "3", Card: "Three"},
	}

	summary, err := engine.Run(context.Background(), &sliceSource{records: records})
	if err != nil {
		t.Fatalf("a failed batch must not abort the run: %v", err)
	}
	if summary.BatchFailures != 1 {
		t.Fatalf("expected 1 batch failure, got %d", summary.BatchFailures)
	}
	if summary.ProductsUpserted != 2 || len(store.products) != 2 {
		t.Fatalf("expected the other batches to land, got %d upserted, %d stored",
			summary.ProductsUpserted, len(store.products))
	}
}

func TestRun_SkipsAndDuplicates(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	records := []*feed.ProductRecord{
		{EAN: "", Card: "No Identity"},
		{EAN: "5", Card: "First"},
		{EAN: "5", Card: "Second Occurrence"},
	}

	summary, err := engine.Run(context.Background(), &sliceSource{records: records})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RecordsSkipped != 1 {
		t.Fatalf("expected 1 skipped record, got %d", summary.RecordsSkipped)
	}
	if summary.DuplicatesDropped != 1 {
		t.Fatalf("expected 1 dropped duplicate, got %d", summary.DuplicatesDropped)
	}
	if got := store.products["5"].Name; got != "First" {
		t.Fatalf("expected the first occurrence to win, got %q", got)
	}
}

func TestRun_EANWhitespaceNormalizedBeforeDedup(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	records := []*feed.ProductRecord{
		{EAN: "123", Card: "First"},
		{EAN: " 123", Card: "Padded Duplicate"},
		{EAN: "   ", Card: "Whitespace Only"},
	}

	summary, err := engine.Run(context.Background(), &sliceSource{records: records})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RecordsSkipped != 1 {
		t.Fatalf("whitespace-only EAN must be skipped, got %d skips", summary.RecordsSkipped)
	}
	if summary.DuplicatesDropped != 1 {
		t.Fatalf("padded duplicate must be dropped, got %d drops", summary.DuplicatesDropped)
	}
	if len(store.products) != 1 {
		t.Fatalf("expected exactly one product row, got %v", store.products)
	}
	if got := store.products["123"].Name; got != "First" {
		t.Fatalf("first occurrence must win over the padded duplicate, got %q", got)
	}
	if _, ok := store.products[""]; ok {
		t.Fatalf("no row may be stored under the empty natural key")
	}
}

func TestRun_CostlessVariantSkipsPricing(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	records := []*feed.ProductRecord{
		{EAN: "9", Card: "Freebie", Sizes: []feed.SizeRecord{{Code: "uniw"}}},
	}

	summary, err := engine.Run(context.Background(), &sliceSource{records: records})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.PricesSkippedNoCost != 1 {
		t.Fatalf("expected 1 costless skip, got %d", summary.PricesSkippedNoCost)
	}
	if summary.PriceEntriesUpserted != 0 || len(store.prices) != 0 {
		t.Fatalf("costless variant must produce no price rows: %+v", summary)
	}
}

func TestRun_SourceErrorIsFatal(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	readErr := errors.New("connection reset")
	src := &sliceSource{records: []*feed.ProductRecord{{EAN: "1", Card: "One"}}, err: readErr}

	summary, err := engine.Run(context.Background(), src)
	if !errors.Is(err, readErr) {
		t.Fatalf("expected the read error to surface, got %v", err)
	}
	if summary.RecordsSeen != 1 {
		t.Fatalf("summary must reflect progress before the failure: %+v", summary)
	}
}

func TestRun_CancellationAbortsBetweenBatches(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, &sliceSource{records: sampleRecords()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
