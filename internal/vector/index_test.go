package vector

import (
	"context"
	"math"
	"testing"

	"compass/internal/faults"
)

func TestBuildEmptyCorpus(t *testing.T) {
	_, err := Build(nil, "fp")
	if !faults.Is(err, faults.KindEmptyCorpus) {
		t.Fatalf("Build(nil) error kind = %q, want %q", faults.KindOf(err), faults.KindEmptyCorpus)
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	entries := []Entry{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{1, 0, 0}},
	}
	_, err := Build(entries, "fp")
	if !faults.Is(err, faults.KindDimensionMismatch) {
		t.Fatalf("Build() error kind = %q, want %q", faults.KindOf(err), faults.KindDimensionMismatch)
	}
}

func TestQueryOrderingAndClamp(t *testing.T) {
	entries := []Entry{
		{ID: "far", Vector: []float32{0, 1}},
		{ID: "near", Vector: []float32{1, 0}},
		{ID: "mid", Vector: []float32{0.8, 0.6}},
	}
	idx, err := Build(entries, "fp")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	results, err := idx.Query([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	// k larger than the corpus is clamped
	if len(results) != 3 {
		t.Fatalf("Query() returned %d results, want 3", len(results))
	}

	wantOrder := []string{"near", "mid", "far"}
	seen := make(map[string]bool)
	for i, r := range results {
		if r.ID != wantOrder[i] {
			t.Errorf("result %d is %q, want %q", i, r.ID, wantOrder[i])
		}
		if seen[r.ID] {
			t.Errorf("duplicate id %q in results", r.ID)
		}
		seen[r.ID] = true
		if i > 0 && results[i-1].Score < r.Score {
			t.Errorf("results not ordered by descending score at %d", i)
		}
	}

	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("top score = %v, want 1.0", results[0].Score)
	}
}

func TestQueryTieBreakAscendingID(t *testing.T) {
	// Identical vectors force equal scores; order must fall back to id.
	entries := []Entry{
		{ID: "zeta", Vector: []float32{1, 0}},
		{ID: "alpha", Vector: []float32{1, 0}},
		{ID: "mike", Vector: []float32{1, 0}},
	}
	idx, err := Build(entries, "fp")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	results, err := idx.Query([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	wantOrder := []string{"alpha", "mike", "zeta"}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Errorf("result %d is %q, want %q", i, results[i].ID, want)
		}
	}
}

func TestQueryDimensionMismatch(t *testing.T) {
	idx, err := Build([]Entry{{ID: "a", Vector: []float32{1, 0, 0}}}, "fp")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	_, err = idx.Query([]float32{1, 0}, 1)
	if !faults.Is(err, faults.KindDimensionMismatch) {
		t.Fatalf("Query() error kind = %q, want %q", faults.KindOf(err), faults.KindDimensionMismatch)
	}
}

func TestQueryKBounds(t *testing.T) {
	idx, err := Build([]Entry{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}, "fp")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	results, err := idx.Query([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Query(k=1) returned %d results, want 1", len(results))
	}

	results, err = idx.Query([]float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Query(k=0) error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Query(k=0) returned %d results, want 0", len(results))
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0.0},
		{"length mismatch", []float32{1, 2, 3}, []float32{1, 2}, 0.0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Cosine(test.a, test.b); math.Abs(got-test.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestMockEmbedderDeterminism(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "high balance, no credit card")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	b, err := e.Embed(ctx, "high balance, no credit card")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if len(a) != 64 {
		t.Fatalf("Embed() vector length = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("repeated Embed() calls differ at dimension %d", i)
		}
	}

	c, err := e.Embed(ctx, "a different text")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if Cosine(a, c) > 0.9999 {
		t.Error("different texts should not produce near-identical vectors")
	}
}

func TestMockEmbedderInvalidInput(t *testing.T) {
	e := NewMockEmbedder(16)
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := e.Embed(context.Background(), text); !faults.Is(err, faults.KindInvalidInput) {
			t.Errorf("Embed(%q) error kind = %q, want %q", text, faults.KindOf(err), faults.KindInvalidInput)
		}
	}
}
