package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// AskUseCase feeds the retrieval selection into the two-stage answer
// collaborator: a grounded answer built strictly from the sources, then a
// free analysis conditioned on it.
type AskUseCase struct {
	retriever ports.Retriever
	generator ports.AnswerGenerator
}

func NewAskUseCase(retriever ports.Retriever, generator ports.AnswerGenerator) *AskUseCase {
	return &AskUseCase{
		retriever: retriever,
		generator: generator,
	}
}

func (uc *AskUseCase) Ask(
	ctx context.Context,
	question, collection string,
	cfg domain.RetrievalConfig,
) (*domain.Answer, error) {
	result, err := uc.retriever.Retrieve(ctx, question, collection, cfg)
	if err != nil {
		return nil, err
	}

	if len(result.Candidates) == 0 {
		return &domain.Answer{
			Grounded: "The collection has no material relevant to this question.",
			Sources:  []domain.ScoredCandidate{},
			Reranked: result.Reranked,
		}, nil
	}

	grounded, err := uc.generator.GenerateGrounded(ctx, question, result.Candidates)
	if err != nil {
		return nil, fmt.Errorf("generate grounded answer: %w", err)
	}

	// The analysis pass degrades to grounded-only, it never fails the request.
	analysis, err := uc.generator.GenerateAnalysis(ctx, question, grounded)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("analysis pass failed, returning grounded answer only",
			"collection", collection,
			"error", err,
		)
		analysis = ""
	}

	return &domain.Answer{
		Grounded: grounded,
		Analysis: analysis,
		Sources:  result.Candidates,
		Reranked: result.Reranked,
	}, nil
}
