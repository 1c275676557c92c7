package ports

import (
	"context"
	"io"

	"lumi/internal/core/domain"
)

// Retriever is the inbound contract for the hybrid retrieval pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, question, collection string, cfg domain.RetrievalConfig) (*domain.RetrievalResult, error)
}

// AskService runs retrieval and hands the selection to the answer stage.
type AskService interface {
	Ask(ctx context.Context, question, collection string, cfg domain.RetrievalConfig) (*domain.Answer, error)
}

// SourceIngestor accepts new study materials for a collection.
type SourceIngestor interface {
	IngestFile(ctx context.Context, collection, filename string, kind domain.SourceKind, body io.Reader) (*domain.Source, error)
	IngestYouTube(ctx context.Context, collection, videoURL string) (*domain.Source, error)
}

// SourceProcessor is the asynchronous parse→chunk→embed→index pipeline.
type SourceProcessor interface {
	ProcessByID(ctx context.Context, sourceID string) error
}

// SourceReader is the read model for source state.
type SourceReader interface {
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	ListByCollection(ctx context.Context, collection string) ([]domain.Source, error)
}

// CollectionService manages knowledge-base lifecycle.
type CollectionService interface {
	Create(ctx context.Context, name string) error
	List(ctx context.Context) []domain.CollectionInfo
	Delete(ctx context.Context, name string) error
}
