package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// RetrieveUseCase runs the hybrid retrieval pipeline: dense and sparse query
// in parallel, fusion with dedup, optional cross-encoder rerank, top-K
// selection. It is stateless between calls; all mutable state lives in the
// collection's chunk store and indexes.
type RetrieveUseCase struct {
	embedder ports.EmbeddingProvider
	dense    ports.VectorIndex
	sparse   ports.KeywordIndex
	scorer   ports.RelevanceScorer
	store    ports.ChunkStore
	defaults domain.RetrievalConfig
}

func NewRetrieveUseCase(
	embedder ports.EmbeddingProvider,
	dense ports.VectorIndex,
	sparse ports.KeywordIndex,
	scorer ports.RelevanceScorer,
	store ports.ChunkStore,
	defaults domain.RetrievalConfig,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		dense:    dense,
		sparse:   sparse,
		scorer:   scorer,
		store:    store,
		defaults: defaults,
	}
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	question, collection string,
	cfg domain.RetrievalConfig,
) (*domain.RetrievalResult, error) {
	cfg = uc.normalizeConfig(cfg)

	question = strings.TrimSpace(question)
	if !hasQuerySignal(question) {
		return nil, domain.WrapError(domain.ErrEmptyQuery, "retrieve", errors.New("question carries no searchable text"))
	}
	if !uc.store.Exists(collection) {
		return nil, domain.WrapError(domain.ErrCollectionNotFound, "retrieve", fmt.Errorf("collection %q", collection))
	}

	// Shared lock: retrieval may overlap with retrieval, never with ingestion.
	release := uc.store.Shared(collection)
	defer release()

	if uc.store.Count(collection) == 0 {
		return &domain.RetrievalResult{Candidates: []domain.ScoredCandidate{}}, nil
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryVector) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyQuery, "retrieve", errors.New("query produced an empty embedding"))
	}

	var denseHits, sparseHits []domain.ScoredCandidate
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		hits, err := uc.dense.Search(groupCtx, collection, queryVector, cfg.Candidates)
		if err != nil {
			return domain.WrapError(domain.ErrIndexUnavailable, "dense search", err)
		}
		denseHits = hits
		return nil
	})
	group.Go(func() error {
		hits, err := uc.sparse.Search(groupCtx, collection, question, cfg.Candidates)
		if err != nil {
			return domain.WrapError(domain.ErrIndexUnavailable, "sparse search", err)
		}
		sparseHits = hits
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var fused []domain.ScoredCandidate
	switch cfg.Fusion {
	case domain.FusionRRF:
		fused = fuseRRF(denseHits, sparseHits, cfg.DenseWeight, cfg.RRFK)
	default:
		fused = fuseWeighted(denseHits, sparseHits, cfg.DenseWeight)
	}

	reranked := false
	if cfg.UseReranker && uc.scorer != nil {
		out, err := rerankCandidates(ctx, uc.scorer, question, fused, cfg.RerankTopN)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Reranker degrades, never fails: keep the fusion order.
			slog.Warn("reranker unavailable, falling back to fusion order",
				"collection", collection,
				"error", err,
			)
		} else {
			fused = out
			reranked = true
		}
	}

	return &domain.RetrievalResult{
		Candidates: selectTopK(fused, cfg.TopK),
		Reranked:   reranked,
	}, nil
}

func (uc *RetrieveUseCase) normalizeConfig(cfg domain.RetrievalConfig) domain.RetrievalConfig {
	if cfg.TopK == 0 {
		cfg.TopK = uc.defaults.TopK
	}
	if cfg.DenseWeight < 0 || cfg.DenseWeight > 1 {
		cfg.DenseWeight = uc.defaults.DenseWeight
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = uc.defaults.Candidates
	}
	if cfg.Candidates < cfg.TopK {
		cfg.Candidates = cfg.TopK
	}
	if cfg.Fusion == "" {
		cfg.Fusion = uc.defaults.Fusion
	}
	if cfg.RRFK <= 0 {
		cfg.RRFK = uc.defaults.RRFK
	}
	if cfg.RerankTopN <= 0 {
		cfg.RerankTopN = uc.defaults.RerankTopN
	}
	// The rerank window must cover the final selection.
	if cfg.RerankTopN < cfg.TopK {
		cfg.RerankTopN = cfg.TopK
	}
	return cfg
}

// hasQuerySignal reports whether the question tokenizes to anything at all.
// Punctuation-only input is an empty query, not a retrievable one.
func hasQuerySignal(question string) bool {
	for _, r := range question {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
