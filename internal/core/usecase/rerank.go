package usecase

import (
	"context"
	"fmt"
	"sort"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// rerankCandidates re-scores the head of the fused list with the cross-encoder
// and reorders it. The chunk set is never changed: the head is reordered in
// place and the tail keeps its fusion order behind it.
func rerankCandidates(
	ctx context.Context,
	scorer ports.RelevanceScorer,
	question string,
	fused []domain.ScoredCandidate,
	topN int,
) ([]domain.ScoredCandidate, error) {
	if len(fused) == 0 {
		return fused, nil
	}
	if topN <= 0 || topN > len(fused) {
		topN = len(fused)
	}

	head := make([]domain.ScoredCandidate, topN)
	copy(head, fused[:topN])

	texts := make([]string, len(head))
	for i := range head {
		texts[i] = head[i].Chunk.Text
	}

	scores, err := scorer.Score(ctx, question, texts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(head) {
		return nil, fmt.Errorf("relevance scorer returned %d scores for %d candidates", len(scores), len(head))
	}

	for i := range head {
		head[i].Score = scores[i]
	}

	sort.SliceStable(head, func(i, j int) bool {
		if head[i].Score != head[j].Score {
			return head[i].Score > head[j].Score
		}
		return head[i].Chunk.ID < head[j].Chunk.ID
	})

	if topN == len(fused) {
		return head, nil
	}

	out := make([]domain.ScoredCandidate, 0, len(fused))
	out = append(out, head...)
	out = append(out, fused[topN:]...)
	return out, nil
}
