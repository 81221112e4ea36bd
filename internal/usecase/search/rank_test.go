package search

import (
	"math"
	"testing"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
)

func candidate(asin string, distance, rating float64, count int) domain.Candidate {
	return domain.Candidate{
		ParentASIN:    asin,
		Title:         "item " + asin,
		Distance:      distance,
		RatingAverage: rating,
		RatingCount:   count,
	}
}

func TestRank_EmptyInput(t *testing.T) {
	ranked, skipped := rankCandidates(nil, DefaultWeights(), 1)
	if ranked == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %d", len(ranked))
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped candidates, got %v", skipped)
	}
}

func TestRank_SimilarityMonotonicity(t *testing.T) {
	// Identical rating and popularity terms; only distance differs.
	cands := []domain.Candidate{
		candidate("far", 0.4, 4.0, 20),
		candidate("near", 0.1, 4.0, 20),
	}
	ranked, _ := rankCandidates(cands, DefaultWeights(), 1)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].ParentASIN != "near" {
		t.Errorf("expected smaller distance to rank first, got %s", ranked[0].ParentASIN)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected strictly higher score for smaller distance: %g <= %g",
			ranked[0].Score, ranked[1].Score)
	}
}

func TestRank_ConfidenceCap(t *testing.T) {
	const minRatings = 5
	// Both at or above the confidence threshold: ratingScore saturates, so
	// only popularity may differ.
	atCap := []domain.Candidate{candidate("a", 0.2, 4.0, minRatings)}
	aboveCap := []domain.Candidate{candidate("b", 0.2, 4.0, minRatings * 100)}

	rankedAt, _ := rankCandidates(atCap, Weights{Rating: 1}, minRatings)
	rankedAbove, _ := rankCandidates(aboveCap, Weights{Rating: 1}, minRatings)

	// With only the rating weight active, both scores equal the saturated
	// rating score 4/5.
	if math.Abs(rankedAt[0].Score-0.8) > 1e-12 {
		t.Errorf("expected saturated rating score 0.8, got %g", rankedAt[0].Score)
	}
	if rankedAt[0].Score != rankedAbove[0].Score {
		t.Errorf("rating score changed past the confidence cap: %g vs %g",
			rankedAt[0].Score, rankedAbove[0].Score)
	}
}

func TestRank_ZeroRatingsZeroConfidence(t *testing.T) {
	ranked, _ := rankCandidates(
		[]domain.Candidate{candidate("a", 0.0, 5.0, 0)},
		Weights{Rating: 1}, 3,
	)
	if ranked[0].Score != 0 {
		t.Errorf("expected zero rating score for unreviewed item, got %g", ranked[0].Score)
	}
}

func TestRank_PopularityBounds(t *testing.T) {
	cands := []domain.Candidate{
		candidate("none", 0.1, 3.0, 0),
		candidate("some", 0.1, 3.0, 7),
		candidate("top", 0.1, 3.0, 500),
	}
	ranked, _ := rankCandidates(cands, Weights{Popularity: 1}, 1)

	byASIN := map[string]float64{}
	for _, r := range ranked {
		byASIN[r.ParentASIN] = r.Score
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("popularity score out of [0,1] for %s: %g", r.ParentASIN, r.Score)
		}
	}
	if byASIN["top"] != 1.0 {
		t.Errorf("expected popularity 1.0 for the max-count candidate, got %g", byASIN["top"])
	}
	if byASIN["none"] != 0.0 {
		t.Errorf("expected popularity 0 for zero-count candidate, got %g", byASIN["none"])
	}
}

func TestRank_NegativeSimilarityPassesThrough(t *testing.T) {
	// Distance beyond 1 is legal input; similarity goes negative unclamped.
	ranked, _ := rankCandidates(
		[]domain.Candidate{candidate("a", 1.5, 0, 0)},
		Weights{Similarity: 1}, 1,
	)
	if math.Abs(ranked[0].Score-(-0.5)) > 1e-12 {
		t.Errorf("expected score -0.5, got %g", ranked[0].Score)
	}
}

func TestRank_ReferenceScenario(t *testing.T) {
	a := candidate("A", 0.1, 4.0, 50)
	b := candidate("B", 0.05, 2.0, 1)
	ranked, skipped := rankCandidates([]domain.Candidate{a, b}, DefaultWeights(), 1)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped: %v", skipped)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}

	if ranked[0].ParentASIN != "A" || ranked[1].ParentASIN != "B" {
		t.Fatalf("expected order [A B], got [%s %s]", ranked[0].ParentASIN, ranked[1].ParentASIN)
	}

	wantA := 0.7*0.9 + 0.2*0.8 + 0.1*1.0
	if math.Abs(ranked[0].Score-wantA) > 1e-9 {
		t.Errorf("score A = %g, want %g", ranked[0].Score, wantA)
	}

	wantB := 0.7*0.95 + 0.2*0.4 + 0.1*(math.Log1p(1)/math.Log1p(50))
	if math.Abs(ranked[1].Score-wantB) > 1e-9 {
		t.Errorf("score B = %g, want %g", ranked[1].Score, wantB)
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	// Identical candidates tie exactly; stable sort keeps retrieval order.
	cands := []domain.Candidate{
		candidate("first", 0.2, 3.0, 10),
		candidate("second", 0.2, 3.0, 10),
		candidate("third", 0.2, 3.0, 10),
	}
	ranked, _ := rankCandidates(cands, DefaultWeights(), 1)
	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].ParentASIN != want {
			t.Errorf("position %d: expected %s, got %s", i, want, ranked[i].ParentASIN)
		}
	}
}

func TestRank_SkipsMalformedCandidates(t *testing.T) {
	cands := []domain.Candidate{
		candidate("ok", 0.1, 4.0, 10),
		candidate("bad-distance", math.NaN(), 4.0, 10),
		candidate("bad-count", 0.1, 4.0, -1),
	}
	ranked, skipped := rankCandidates(cands, DefaultWeights(), 1)
	if len(ranked) != 1 || ranked[0].ParentASIN != "ok" {
		t.Fatalf("expected only the valid candidate, got %+v", ranked)
	}
	if len(skipped) != 2 {
		t.Errorf("expected 2 skipped, got %v", skipped)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	cands := []domain.Candidate{candidate("a", 0.25, 4.5, 12)}
	original := cands[0]
	ranked, _ := rankCandidates(cands, DefaultWeights(), 1)
	if cands[0] != original {
		t.Error("input candidate was mutated")
	}
	if ranked[0].Candidate != original {
		t.Error("scored candidate should embed an unmodified copy")
	}
}
