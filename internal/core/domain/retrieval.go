package domain

// Provenance records which retrieval path produced a candidate.
type Provenance string

const (
	ProvenanceDense  Provenance = "dense"
	ProvenanceSparse Provenance = "sparse"
	ProvenanceBoth   Provenance = "both"
)

type FusionStrategy string

const (
	FusionWeighted FusionStrategy = "weighted"
	FusionRRF      FusionStrategy = "rrf"
)

// ScoredCandidate pairs a chunk with a per-query score. Scores from different
// retrieval paths are not comparable until the fusion stage normalizes them.
type ScoredCandidate struct {
	Chunk      Chunk      `json:"chunk"`
	Score      float64    `json:"score"`
	Provenance Provenance `json:"provenance"`
}

// RetrievalConfig is supplied by the caller per query and never stored.
type RetrievalConfig struct {
	TopK        int
	UseReranker bool
	DenseWeight float64
	Candidates  int
	Fusion      FusionStrategy
	RRFK        int
	RerankTopN  int
}

// RetrievalResult carries the selected candidates plus an explicit flag so
// downstream code can tell a reranked order from a fusion-order pass-through.
type RetrievalResult struct {
	Candidates []ScoredCandidate `json:"candidates"`
	Reranked   bool              `json:"reranked"`
}

// Answer is the two-part response: a source-grounded answer and a free
// analysis that goes beyond the retrieved material.
type Answer struct {
	Grounded string            `json:"grounded"`
	Analysis string            `json:"analysis,omitempty"`
	Sources  []ScoredCandidate `json:"sources"`
	Reranked bool              `json:"reranked"`
}
