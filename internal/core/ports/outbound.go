package ports

import (
	"context"
	"io"

	"lumi/internal/core/domain"
)

// EmbeddingProvider builds vectors for chunk text and query text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the dense retrieval capability: approximate nearest-neighbor
// search over chunk embeddings, scoped per collection. Search is read-only and
// returns candidates in descending similarity order.
type VectorIndex interface {
	IndexChunks(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]domain.ScoredCandidate, error)
	Drop(ctx context.Context, collection string) error
}

// KeywordIndex is the sparse retrieval capability: BM25-style ranked search
// over chunk token sets. Index-time and query-time tokenization must match.
type KeywordIndex interface {
	IndexChunks(ctx context.Context, collection string, chunks []domain.Chunk) error
	Search(ctx context.Context, collection string, query string, limit int) ([]domain.ScoredCandidate, error)
	Drop(ctx context.Context, collection string) error
}

// RelevanceScorer scores (query, text) pairs with a cross-encoder model.
// Scores come back in candidate order, one per text.
type RelevanceScorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// ChunkStore owns the ingested chunks of every collection and serializes
// ingestion against retrieval: Exclusive gates index mutation, Shared gates
// queries. Both return a release func.
type ChunkStore interface {
	Create(collection string) error
	Exists(collection string) bool
	Append(collection string, chunks []domain.Chunk) error
	Count(collection string) int
	List() []domain.CollectionInfo
	Drop(collection string) error
	Exclusive(collection string) func()
	Shared(collection string) func()
}

// SourceRepository persists source metadata and its processing lifecycle.
type SourceRepository interface {
	Create(ctx context.Context, src *domain.Source) error
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	ListByCollection(ctx context.Context, collection string) ([]domain.Source, error)
	UpdateStatus(ctx context.Context, id string, status domain.SourceStatus, errMessage string) error
	MarkReady(ctx context.Context, id string, chunkCount int) error
	DeleteByCollection(ctx context.Context, collection string) error
}

// ObjectStorage stores raw source payloads until the worker processes them.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes source-ingested events.
type MessageQueue interface {
	PublishSourceIngested(ctx context.Context, sourceID string) error
	SubscribeSourceIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// SourceParser turns a stored payload into locatable text segments.
type SourceParser interface {
	Parse(ctx context.Context, src *domain.Source, r io.Reader) ([]domain.Segment, error)
}

// TranscriptFetcher downloads a video transcript as timed segments.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]domain.Segment, error)
}

// Chunker splits segment text into overlapping windows.
type Chunker interface {
	Split(text string) []string
}

// AnswerGenerator produces the two answer parts from the selected context.
type AnswerGenerator interface {
	GenerateGrounded(ctx context.Context, question string, candidates []domain.ScoredCandidate) (string, error)
	GenerateAnalysis(ctx context.Context, question, groundedAnswer string) (string, error)
}
