package ollama

import (
	"fmt"
	"strings"

	"lumi/internal/core/domain"
)

func buildGroundedPrompt(question string, candidates []domain.ScoredCandidate) string {
	var contextBuilder strings.Builder
	for idx, cand := range candidates {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] source=%s %s score=%.3f\n%s\n\n",
			idx+1,
			cand.Chunk.SourceName,
			formatLocator(cand.Chunk),
			cand.Score,
			cand.Chunk.Text,
		))
	}

	return fmt.Sprintf(`You are a study assistant. Answer the question strictly from the excerpts below.
Cite the excerpts you used as [n]. Do not use outside knowledge.
If the excerpts do not contain the answer, say so directly.

Question:
%s

Excerpts:
%s`, question, contextBuilder.String())
}

func buildAnalysisPrompt(question, groundedAnswer string) string {
	return fmt.Sprintf(`You are a study assistant. A grounded answer sourced only from course material follows.
Add a short analysis: broader context, connections to related concepts, and anything
the material leaves out. You may use knowledge beyond the material here.

Question:
%s

Grounded answer:
%s`, question, groundedAnswer)
}

func formatLocator(ch domain.Chunk) string {
	switch ch.Kind {
	case domain.SourcePDF:
		return fmt.Sprintf("page=%d", ch.Locator.Page)
	case domain.SourceYouTube:
		return fmt.Sprintf("t=%ds", ch.Locator.StartSec)
	default:
		return "kind=" + string(ch.Kind)
	}
}
