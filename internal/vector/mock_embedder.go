package vector

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"

	"compass/internal/faults"
)

// MockEmbedder produces deterministic embeddings without a remote model:
// the same text always yields the same unit-length vector. It is used in
// tests and as a stand-in when no embedding endpoint is configured.
type MockEmbedder struct {
	dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 128
	}
	return &MockEmbedder{dim: dim}
}

func (e *MockEmbedder) Dimension() int { return e.dim }

// Embed hashes the text and expands the digest into a normalized vector.
// Empty or whitespace-only input is rejected, matching the contract of the
// remote embedder.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, faults.Newf(faults.KindInvalidInput, "cannot embed empty text")
	}

	vec := make([]float32, e.dim)
	hash := md5.Sum([]byte(text))

	for i := 0; i < e.dim; i++ {
		hashIdx := (i * 4) % (len(hash) - 4)
		seed := binary.LittleEndian.Uint32(hash[hashIdx : hashIdx+4])
		// Cycle the digest so dimensions beyond its length still vary.
		seed += uint32(i) * 2654435761
		vec[i] = float32(seed%1000)/500.0 - 1.0
	}

	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	mag := float32(math.Sqrt(float64(sum)))
	if mag == 0 {
		return
	}
	for i := range vec {
		vec[i] /= mag
	}
}
