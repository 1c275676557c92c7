package usecase

import (
	"sort"

	"lumi/internal/core/domain"
)

type fusedCandidate struct {
	cand     domain.ScoredCandidate
	score    float64
	inDense  bool
	inSparse bool
}

// fuseWeighted merges the dense and sparse lists with rank-based score
// normalization: the candidate at rank i of an n-element list contributes
// (n-i)/n, scaled by its list weight. Rank normalization is invariant to the
// two scorers' numeric ranges, so cosine similarities and BM25 scores never
// bias the merge.
func fuseWeighted(dense, sparse []domain.ScoredCandidate, denseWeight float64) []domain.ScoredCandidate {
	if denseWeight < 0 || denseWeight > 1 {
		denseWeight = 0.5
	}
	sparseWeight := 1.0 - denseWeight

	acc := make(map[string]*fusedCandidate, len(dense)+len(sparse))
	addList := func(list []domain.ScoredCandidate, weight float64, isDense bool) {
		n := len(list)
		for i, cand := range list {
			norm := float64(n-i) / float64(n)
			entry, ok := acc[cand.Chunk.ID]
			if !ok {
				entry = &fusedCandidate{cand: cand}
				acc[cand.Chunk.ID] = entry
			}
			entry.score += weight * norm
			if isDense {
				entry.inDense = true
			} else {
				entry.inSparse = true
			}
		}
	}

	addList(dense, denseWeight, true)
	addList(sparse, sparseWeight, false)

	return flattenFused(acc)
}

// fuseRRF is the reciprocal-rank-fusion alternative: each appearance at rank i
// contributes weight/(k+i+1). Same dedup and tie-break rules as fuseWeighted.
func fuseRRF(dense, sparse []domain.ScoredCandidate, denseWeight float64, rrfK int) []domain.ScoredCandidate {
	if denseWeight < 0 || denseWeight > 1 {
		denseWeight = 0.5
	}
	if rrfK <= 0 {
		rrfK = 60
	}
	sparseWeight := 1.0 - denseWeight

	acc := make(map[string]*fusedCandidate, len(dense)+len(sparse))
	addList := func(list []domain.ScoredCandidate, weight float64, isDense bool) {
		for rank, cand := range list {
			entry, ok := acc[cand.Chunk.ID]
			if !ok {
				entry = &fusedCandidate{cand: cand}
				acc[cand.Chunk.ID] = entry
			}
			entry.score += weight / float64(rrfK+rank+1)
			if isDense {
				entry.inDense = true
			} else {
				entry.inSparse = true
			}
		}
	}

	addList(dense, denseWeight, true)
	addList(sparse, sparseWeight, false)

	return flattenFused(acc)
}

func flattenFused(acc map[string]*fusedCandidate) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(acc))
	for _, entry := range acc {
		cand := entry.cand
		cand.Score = entry.score
		cand.Provenance = provenanceOf(entry)
		out = append(out, cand)
	}

	// Ties break on chunk id so identical inputs always produce the same order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})

	return out
}

func provenanceOf(entry *fusedCandidate) domain.Provenance {
	switch {
	case entry.inDense && entry.inSparse:
		return domain.ProvenanceBoth
	case entry.inDense:
		return domain.ProvenanceDense
	default:
		return domain.ProvenanceSparse
	}
}

// selectTopK truncates the ordered candidate list to the caller's budget.
// Non-positive k yields an empty selection.
func selectTopK(candidates []domain.ScoredCandidate, k int) []domain.ScoredCandidate {
	if k <= 0 {
		return []domain.ScoredCandidate{}
	}
	if len(candidates) <= k {
		return candidates
	}
	return candidates[:k]
}
