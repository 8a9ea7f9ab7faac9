package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// MockEmbedder produces deterministic unit vectors derived from the
// text, so identical inputs always land on identical embeddings and
// similarity comparisons are stable across runs.
type MockEmbedder struct {
	Dim int
}

// Embed returns a normalized pseudo-random vector seeded by the text.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	dim := m.Dim
	if dim <= 0 {
		dim = 768
	}

	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}
