package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/stephen-mccullough/fashion-search/internal/db"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
)

func ptr[T any](v T) *T { return &v }

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- hash.go tests ---

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "products:B01")).
		Return(mock.ErrorResult(errors.New("connection refused")))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "products:B01")
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpHGetAll {
		t.Errorf("expected wrapped db.Error with HGETALL op, got %v", err)
	}
}

// --- index.go tests ---

func TestBuildCreateArgs(t *testing.T) {
	def, err := db.NewIndex("products:idx").
		Prefix("products:").
		Tag("brand").
		Numeric("price").
		VectorHNSW("embedding", 4, db.DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("build definition: %v", err)
	}

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"products:idx", "ON", "HASH",
		"PREFIX", "1", "products:",
		"SCHEMA",
		"brand", "TAG",
		"price", "NUMERIC",
		"embedding", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "4", "DISTANCE_METRIC", "COSINE",
		"M", "32", "EF_CONSTRUCTION", "400",
	}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(args), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildCreateArgs_Invalid(t *testing.T) {
	_, err := buildCreateArgs(&db.IndexDefinition{Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}})
	if err == nil {
		t.Error("expected error for missing index name")
	}
	_, err = buildCreateArgs(&db.IndexDefinition{Name: "idx"})
	if err == nil {
		t.Error("expected error for empty schema")
	}
}

// --- Filter building tests ---

func TestBuildFilter_Empty(t *testing.T) {
	if got := buildFilter(filter.Predicate{}); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestBuildFilter_Category(t *testing.T) {
	p := filter.Predicate{MainCategory: ptr("Shoes")}
	if got := buildFilter(p); got != `@main_category:{Shoes}` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildFilter_TagEscaping(t *testing.T) {
	p := filter.Predicate{Brand: ptr("Levi's")}
	if got := buildFilter(p); got != `@brand:{Levi\'s}` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildFilter_PriceRange(t *testing.T) {
	p := filter.Predicate{MinPrice: ptr(10.0), MaxPrice: ptr(100.0)}
	if got := buildFilter(p); got != `@price:[10 100]` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildFilter_OpenBounds(t *testing.T) {
	p := filter.Predicate{MaxPrice: ptr(50.0)}
	if got := buildFilter(p); got != `@price:[-inf 50]` {
		t.Errorf("unexpected filter: %q", got)
	}

	p = filter.Predicate{MinRating: ptr(4.0)}
	if got := buildFilter(p); got != `@average_rating:[4 +inf]` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildFilter_Combined(t *testing.T) {
	p := filter.Predicate{
		MainCategory: ptr("Dresses"),
		MinPrice:     ptr(20.0),
		MinRating:    ptr(3.5),
	}
	want := `@main_category:{Dresses} @price:[20 +inf] @average_rating:[3.5 +inf]`
	if got := buildFilter(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, 2.0})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
}
