package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stephen-mccullough/fashion-search/internal/db"
	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
)

func TestRetrieve_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "fashion:products:idx" {
			t.Errorf("IndexName = %q, want %q", q.IndexName, "fashion:products:idx")
		}
		if q.K != 10 {
			t.Errorf("K = %d, want 10", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:      "fashion:products:B001",
					Distance: 0.1,
					Fields: map[string]string{
						"title":          "Leather Boots",
						"description":    "Ankle boots",
						"average_rating": "4.5",
						"rating_number":  "120",
					},
				},
				{
					Key:      "fashion:products:B002",
					Distance: 0.25,
					Fields: map[string]string{
						"title": "Denim Jacket",
					},
				},
			},
		}, nil
	}

	got, err := repo.Retrieve(context.Background(), testVector(), filter.Predicate{}, 0.3, 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(got))
	}

	first := got[0]
	if first.ParentASIN != "B001" {
		t.Errorf("ParentASIN = %q, want %q", first.ParentASIN, "B001")
	}
	if first.Title != "Leather Boots" {
		t.Errorf("Title = %q, want %q", first.Title, "Leather Boots")
	}
	if first.Distance != 0.1 {
		t.Errorf("Distance = %v, want 0.1", first.Distance)
	}
	if first.RatingAverage != 4.5 {
		t.Errorf("RatingAverage = %v, want 4.5", first.RatingAverage)
	}
	if first.RatingCount != 120 {
		t.Errorf("RatingCount = %d, want 120", first.RatingCount)
	}

	// Rating fields absent from the hash default to zero.
	second := got[1]
	if second.RatingAverage != 0 || second.RatingCount != 0 {
		t.Errorf("missing ratings = (%v, %d), want (0, 0)", second.RatingAverage, second.RatingCount)
	}
}

func TestRetrieve_ThresholdExcludesDistantHits(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 3,
			Entries: []db.SearchEntry{
				{Key: "fashion:products:NEAR", Distance: 0.29, Fields: map[string]string{"title": "near"}},
				{Key: "fashion:products:EDGE", Distance: 0.3, Fields: map[string]string{"title": "edge"}},
				{Key: "fashion:products:FAR", Distance: 0.31, Fields: map[string]string{"title": "far"}},
			},
		}, nil
	}

	got, err := repo.Retrieve(context.Background(), testVector(), filter.Predicate{}, 0.3, 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2 (distance at the threshold is kept)", len(got))
	}
	if got[0].ParentASIN != "NEAR" || got[1].ParentASIN != "EDGE" {
		t.Errorf("kept = [%s %s], want [NEAR EDGE]", got[0].ParentASIN, got[1].ParentASIN)
	}
}

func TestRetrieve_SkipsUnparsableEntries(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "fashion:products:BAD", Distance: 0.1, Fields: map[string]string{"average_rating": "not-a-number"}},
				{Key: "fashion:products:OK", Distance: 0.2, Fields: map[string]string{"title": "fine"}},
			},
		}, nil
	}

	got, err := repo.Retrieve(context.Background(), testVector(), filter.Predicate{}, 0.3, 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(got))
	}
	if got[0].ParentASIN != "OK" {
		t.Errorf("ParentASIN = %q, want %q", got[0].ParentASIN, "OK")
	}
}

func TestRetrieve_StoreErrorWrapsRetrieval(t *testing.T) {
	repo, ms := newTestRepo(t)

	storeErr := errors.New("connection refused")
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, storeErr
	}

	_, err := repo.Retrieve(context.Background(), testVector(), filter.Predicate{}, 0.3, 10)
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("error = %v, want wrapped domain.ErrRetrieval", err)
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want wrapped store error", err)
	}
}

func TestRetrieve_PassesPredicate(t *testing.T) {
	repo, ms := newTestRepo(t)

	brand := "Levi's"
	var gotFilter filter.Predicate
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		gotFilter = q.Filter
		return &db.SearchResult{}, nil
	}

	pred := filter.Predicate{Brand: &brand}
	if _, err := repo.Retrieve(context.Background(), testVector(), pred, 0.3, 10); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if gotFilter.Brand == nil || *gotFilter.Brand != brand {
		t.Errorf("predicate not forwarded to the store query")
	}
}

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hGetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "fashion:products:B001" {
			t.Errorf("key = %q, want %q", key, "fashion:products:B001")
		}
		return map[string]string{
			"title":          "Leather Boots",
			"main_category":  "Shoes",
			"brand":          "Acme",
			"store":          "Acme Store",
			"price":          "79.99",
			"average_rating": "4.5",
			"rating_number":  "120",
		}, nil
	}

	got, err := repo.Get(context.Background(), "B001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ParentASIN != "B001" {
		t.Errorf("ParentASIN = %q, want %q", got.ParentASIN, "B001")
	}
	if got.Price != 79.99 {
		t.Errorf("Price = %v, want 79.99", got.Price)
	}
	if got.MainCategory != "Shoes" {
		t.Errorf("MainCategory = %q, want %q", got.MainCategory, "Shoes")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "MISSING")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("error = %v, want domain.ErrProductNotFound", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return nil, errors.New("timeout")
	}

	_, err := repo.Get(context.Background(), "B001")
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("error = %v, want wrapped domain.ErrRetrieval", err)
	}
}

func TestEnsureIndex_SkipsExisting(t *testing.T) {
	repo, ms := newTestRepo(t)

	created := false
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "fashion:products:idx" {
			t.Errorf("name = %q, want %q", name, "fashion:products:idx")
		}
		return true, nil
	}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		created = true
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 1536); err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}
	if created {
		t.Error("CreateIndex called for an existing index")
	}
}

func TestEnsureIndex_CreatesMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 1536); err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}
	if got == nil {
		t.Fatal("CreateIndex not called")
	}
	if got.Name != "fashion:products:idx" {
		t.Errorf("index name = %q, want %q", got.Name, "fashion:products:idx")
	}

	var vec *db.IndexField
	for i := range got.Fields {
		if got.Fields[i].Type == db.IndexFieldVector {
			vec = &got.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("index definition has no vector field")
	}
	if vec.Name != "embedding" {
		t.Errorf("vector field = %q, want %q", vec.Name, "embedding")
	}
	if vec.VectorDim != 1536 {
		t.Errorf("vector dim = %d, want 1536", vec.VectorDim)
	}
}

func TestEnsureIndex_ExistsCheckError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return false, errors.New("ft._list failed")
	}

	if err := repo.EnsureIndex(context.Background(), 1536); err == nil {
		t.Error("EnsureIndex() error = nil, want error")
	}
}
