package usecase

import (
	"reflect"
	"testing"

	"lumi/internal/core/domain"
)

func cand(id string, score float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Chunk: domain.Chunk{ID: id, Text: "text-" + id},
		Score: score,
	}
}

func idsOf(list []domain.ScoredCandidate) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Chunk.ID
	}
	return out
}

func TestFuseWeightedDeduplicatesAndMarksProvenance(t *testing.T) {
	dense := []domain.ScoredCandidate{cand("a", 0.9), cand("b", 0.7)}
	sparse := []domain.ScoredCandidate{cand("b", 11.2), cand("c", 4.0)}

	fused := fuseWeighted(dense, sparse, 0.5)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused candidates, got %d", len(fused))
	}
	if fused[0].Chunk.ID != "b" {
		t.Fatalf("expected b first (present in both lists), got %s", fused[0].Chunk.ID)
	}

	provenance := map[string]domain.Provenance{}
	for _, c := range fused {
		provenance[c.Chunk.ID] = c.Provenance
	}
	if provenance["a"] != domain.ProvenanceDense {
		t.Fatalf("expected a dense, got %s", provenance["a"])
	}
	if provenance["b"] != domain.ProvenanceBoth {
		t.Fatalf("expected b both, got %s", provenance["b"])
	}
	if provenance["c"] != domain.ProvenanceSparse {
		t.Fatalf("expected c sparse, got %s", provenance["c"])
	}
}

func TestFuseWeightedIsDeterministic(t *testing.T) {
	dense := []domain.ScoredCandidate{cand("a", 0.9), cand("b", 0.8), cand("c", 0.7)}
	sparse := []domain.ScoredCandidate{cand("c", 9.1), cand("d", 8.0), cand("a", 2.2)}

	first := fuseWeighted(dense, sparse, 0.5)
	second := fuseWeighted(dense, sparse, 0.5)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fusion is not deterministic:\n%v\n%v", first, second)
	}
}

func TestFuseWeightedTieBreaksOnChunkID(t *testing.T) {
	// Equal single-list ranks with equal weights produce equal scores.
	dense := []domain.ScoredCandidate{cand("zzz", 0.9)}
	sparse := []domain.ScoredCandidate{cand("aaa", 3.0)}

	fused := fuseWeighted(dense, sparse, 0.5)
	if got := idsOf(fused); got[0] != "aaa" || got[1] != "zzz" {
		t.Fatalf("expected tie-break by chunk id ascending, got %v", got)
	}
}

func TestFuseWeightedRaisingDenseWeightKeepsDenseOnlyAhead(t *testing.T) {
	dense := []domain.ScoredCandidate{cand("dense-only", 0.9)}
	sparse := []domain.ScoredCandidate{cand("sparse-only", 7.0)}

	rankOf := func(list []domain.ScoredCandidate, id string) int {
		for i, c := range list {
			if c.Chunk.ID == id {
				return i
			}
		}
		t.Fatalf("candidate %s missing from fused list", id)
		return -1
	}

	balanced := fuseWeighted(dense, sparse, 0.5)
	denseHeavy := fuseWeighted(dense, sparse, 0.8)

	balancedGap := rankOf(balanced, "dense-only") - rankOf(balanced, "sparse-only")
	denseHeavyGap := rankOf(denseHeavy, "dense-only") - rankOf(denseHeavy, "sparse-only")
	if denseHeavyGap > balancedGap {
		t.Fatalf("raising the dense weight demoted the dense-only candidate: gap %d -> %d", balancedGap, denseHeavyGap)
	}
	if rankOf(denseHeavy, "dense-only") != 0 {
		t.Fatalf("expected dense-only candidate first under dense-heavy weights")
	}
}

func TestFuseWeightedBothListsEmpty(t *testing.T) {
	fused := fuseWeighted(nil, nil, 0.5)
	if len(fused) != 0 {
		t.Fatalf("expected empty fusion output, got %d candidates", len(fused))
	}
}

func TestFuseRRFDeduplicatesAndPrefersDoubleHits(t *testing.T) {
	dense := []domain.ScoredCandidate{cand("a", 0.9), cand("b", 0.8)}
	sparse := []domain.ScoredCandidate{cand("b", 5.0), cand("c", 4.0)}

	fused := fuseRRF(dense, sparse, 0.5, 60)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused candidates, got %d", len(fused))
	}
	if fused[0].Chunk.ID != "b" {
		t.Fatalf("expected b first after RRF fusion, got %s", fused[0].Chunk.ID)
	}
	if fused[0].Provenance != domain.ProvenanceBoth {
		t.Fatalf("expected provenance both for b, got %s", fused[0].Provenance)
	}
}

func TestSelectTopKBounds(t *testing.T) {
	candidates := []domain.ScoredCandidate{cand("a", 3), cand("b", 2), cand("c", 1)}

	if got := selectTopK(candidates, 2); len(got) != 2 || got[0].Chunk.ID != "a" {
		t.Fatalf("expected first two candidates, got %v", idsOf(got))
	}
	if got := selectTopK(candidates, 10); len(got) != 3 {
		t.Fatalf("expected all candidates when k exceeds length, got %d", len(got))
	}
	if got := selectTopK(candidates, 0); len(got) != 0 {
		t.Fatalf("expected empty selection for k=0, got %d", len(got))
	}
	if got := selectTopK(candidates, -3); len(got) != 0 {
		t.Fatalf("expected empty selection for negative k, got %d", len(got))
	}
}
