// Package vector implements the nearest-neighbor index over embedded product
// descriptions. Candidate retrieval uses an HNSW graph; candidates are then
// re-scored with exact cosine similarity so result order is deterministic.
//
// Similarity metric: cosine similarity, identical at build and query time.
// Ordering: descending similarity, ties broken by ascending entry ID.
package vector

import (
	"math"
	"sort"

	"github.com/coder/hnsw"

	"compass/internal/faults"
)

// Entry is one (id, embedding) pair inserted at build time.
type Entry struct {
	ID     string
	Vector []float32
}

// Result is one query hit.
type Result struct {
	ID    string
	Score float64
}

// Index is a build-once, query-many similarity index. It is safe for
// concurrent reads once built; it is never mutated after Build or Load.
type Index struct {
	dim         int
	fingerprint string
	graph       *hnsw.Graph[string]
	vectors     map[string][]float32
	ids         []string // sorted ascending
}

// Build constructs an index from all entries. The fingerprint identifies the
// knowledge base content the entries were embedded from and is persisted by
// Save for staleness detection.
func Build(entries []Entry, fingerprint string) (*Index, error) {
	if len(entries) == 0 {
		return nil, faults.Newf(faults.KindEmptyCorpus, "cannot build index from empty corpus")
	}

	dim := len(entries[0].Vector)
	if dim == 0 {
		return nil, faults.Newf(faults.KindDimensionMismatch, "entry %q has zero-length vector", entries[0].ID)
	}

	idx := &Index{
		dim:         dim,
		fingerprint: fingerprint,
		graph:       hnsw.NewGraph[string](),
		vectors:     make(map[string][]float32, len(entries)),
		ids:         make([]string, 0, len(entries)),
	}

	for _, e := range entries {
		if len(e.Vector) != dim {
			return nil, faults.Newf(faults.KindDimensionMismatch,
				"entry %q has dimension %d, index dimension is %d", e.ID, len(e.Vector), dim)
		}
		vec := make([]float32, dim)
		copy(vec, e.Vector)
		idx.graph.Add(hnsw.MakeNode(e.ID, vec))
		idx.vectors[e.ID] = vec
		idx.ids = append(idx.ids, e.ID)
	}
	sort.Strings(idx.ids)

	return idx, nil
}

// Query returns the k entries most similar to q, ordered by descending cosine
// similarity with ascending-ID tie-break. k larger than the corpus is clamped.
func (idx *Index) Query(q []float32, k int) ([]Result, error) {
	if len(q) != idx.dim {
		return nil, faults.Newf(faults.KindDimensionMismatch,
			"query vector has dimension %d, index dimension is %d", len(q), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(idx.ids) {
		k = len(idx.ids)
	}

	// Search the graph with breadth equal to the corpus size: at the scale of
	// a product catalog this makes candidate retrieval exhaustive, and the
	// exact re-scoring below fixes the final order.
	candidates := idx.graph.Search(q, len(idx.ids))

	results := make([]Result, 0, len(candidates))
	for _, node := range candidates {
		results = append(results, Result{
			ID:    node.Key,
			Score: Cosine(q, idx.vectors[node.Key]),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	return results[:k], nil
}

// Dimension returns the vector length the index was built with.
func (idx *Index) Dimension() int { return idx.dim }

// Fingerprint returns the knowledge base content hash stored with the index.
func (idx *Index) Fingerprint() string { return idx.fingerprint }

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.ids) }

// Cosine computes the cosine similarity of two vectors. Zero-magnitude or
// mismatched vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
