package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"lumi/internal/core/domain"
)

// DenseIndex is an in-process brute-force cosine index. It is the default
// vector backend for local runs and tests; Qdrant replaces it in deployments
// where the corpus outgrows a linear scan.
type DenseIndex struct {
	mu          sync.RWMutex
	collections map[string][]entry
}

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

func NewDenseIndex() *DenseIndex {
	return &DenseIndex{collections: make(map[string][]entry)}
}

func (idx *DenseIndex) IndexChunks(_ context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d vs %d", len(chunks), len(vectors))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i := range chunks {
		idx.collections[collection] = append(idx.collections[collection], entry{
			chunk:  chunks[i],
			vector: vectors[i],
		})
	}
	return nil
}

func (idx *DenseIndex) Search(_ context.Context, collection string, queryVector []float32, limit int) ([]domain.ScoredCandidate, error) {
	if limit <= 0 {
		return []domain.ScoredCandidate{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries := idx.collections[collection]
	out := make([]domain.ScoredCandidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.ScoredCandidate{
			Chunk:      e.chunk,
			Score:      cosine(queryVector, e.vector),
			Provenance: domain.ProvenanceDense,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (idx *DenseIndex) Drop(_ context.Context, collection string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.collections, collection)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
