package keyword

import (
	"context"
	"math"
	"sort"
	"sync"

	"lumi/internal/core/domain"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Index is an in-memory BM25 inverted index, scoped per collection. Chunks
// are append-only; the only removal is dropping a whole collection.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collectionIndex
}

type collectionIndex struct {
	postings map[string]map[string]int // term -> chunk id -> term frequency
	docLen   map[string]int
	chunks   map[string]domain.Chunk
	totalLen int
}

func NewIndex() *Index {
	return &Index{collections: make(map[string]*collectionIndex)}
}

func (idx *Index) IndexChunks(_ context.Context, collection string, chunks []domain.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ci, ok := idx.collections[collection]
	if !ok {
		ci = &collectionIndex{
			postings: make(map[string]map[string]int),
			docLen:   make(map[string]int),
			chunks:   make(map[string]domain.Chunk),
		}
		idx.collections[collection] = ci
	}

	for _, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		// Source-name tokens participate too, so "week3 slides" style
		// queries can hit by filename.
		tokens = append(tokens, Tokenize(chunk.SourceName)...)
		if len(tokens) == 0 {
			continue
		}
		for _, token := range tokens {
			bucket, ok := ci.postings[token]
			if !ok {
				bucket = make(map[string]int)
				ci.postings[token] = bucket
			}
			bucket[chunk.ID]++
		}
		ci.docLen[chunk.ID] = len(tokens)
		ci.totalLen += len(tokens)
		ci.chunks[chunk.ID] = chunk
	}
	return nil
}

func (idx *Index) Search(_ context.Context, collection string, query string, limit int) ([]domain.ScoredCandidate, error) {
	if limit <= 0 {
		return []domain.ScoredCandidate{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ci, ok := idx.collections[collection]
	if !ok || len(ci.chunks) == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	n := float64(len(ci.chunks))
	avgLen := float64(ci.totalLen) / n

	scores := make(map[string]float64)
	for _, token := range tokens {
		bucket, ok := ci.postings[token]
		if !ok {
			continue
		}
		df := float64(len(bucket))
		idf := math.Log(1.0 + (n-df+0.5)/(df+0.5))
		for chunkID, tf := range bucket {
			norm := 1.0 - bm25B + bm25B*float64(ci.docLen[chunkID])/avgLen
			scores[chunkID] += idf * float64(tf) * (bm25K1 + 1.0) / (float64(tf) + bm25K1*norm)
		}
	}

	out := make([]domain.ScoredCandidate, 0, len(scores))
	for chunkID, score := range scores {
		out = append(out, domain.ScoredCandidate{
			Chunk:      ci.chunks[chunkID],
			Score:      score,
			Provenance: domain.ProvenanceSparse,
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

func (idx *Index) Drop(_ context.Context, collection string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.collections, collection)
	return nil
}
