package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// ProcessSourceUseCase is the worker side of ingestion: load the payload,
// produce segments, chunk, embed, then append the whole batch to the chunk
// store and both indexes under the collection's exclusive lock. Retrieval
// never observes a partially indexed batch.
type ProcessSourceUseCase struct {
	repo        ports.SourceRepository
	storage     ports.ObjectStorage
	parser      ports.SourceParser
	transcripts ports.TranscriptFetcher
	chunker     ports.Chunker
	embedder    ports.EmbeddingProvider
	store       ports.ChunkStore
	dense       ports.VectorIndex
	sparse      ports.KeywordIndex
}

func NewProcessSourceUseCase(
	repo ports.SourceRepository,
	storage ports.ObjectStorage,
	parser ports.SourceParser,
	transcripts ports.TranscriptFetcher,
	chunker ports.Chunker,
	embedder ports.EmbeddingProvider,
	store ports.ChunkStore,
	dense ports.VectorIndex,
	sparse ports.KeywordIndex,
) *ProcessSourceUseCase {
	return &ProcessSourceUseCase{
		repo:        repo,
		storage:     storage,
		parser:      parser,
		transcripts: transcripts,
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		dense:       dense,
		sparse:      sparse,
	}
}

func (uc *ProcessSourceUseCase) ProcessByID(ctx context.Context, sourceID string) error {
	if err := uc.repo.UpdateStatus(ctx, sourceID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	chunkCount, err := uc.processPipeline(ctx, sourceID)
	if err != nil {
		if failErr := uc.markFailed(ctx, sourceID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.MarkReady(ctx, sourceID, chunkCount); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessSourceUseCase) processPipeline(ctx context.Context, sourceID string) (int, error) {
	src, err := uc.repo.GetByID(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("fetch source by id: %w", err)
	}

	segments, err := uc.loadSegments(ctx, src)
	if err != nil {
		return 0, err
	}

	chunks := uc.buildChunks(src, segments)
	if len(chunks) == 0 {
		return 0, errors.New("source produced no indexable text")
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if !uc.store.Exists(src.Collection) {
		if err := uc.store.Create(src.Collection); err != nil {
			return 0, fmt.Errorf("create collection: %w", err)
		}
	}

	// Exclusive: the batch becomes visible to retrieval all at once.
	release := uc.store.Exclusive(src.Collection)
	defer release()

	if err := uc.dense.IndexChunks(ctx, src.Collection, chunks, vectors); err != nil {
		return 0, domain.WrapError(domain.ErrIndexUnavailable, "index dense", err)
	}
	if err := uc.sparse.IndexChunks(ctx, src.Collection, chunks); err != nil {
		return 0, domain.WrapError(domain.ErrIndexUnavailable, "index sparse", err)
	}
	if err := uc.store.Append(src.Collection, chunks); err != nil {
		return 0, fmt.Errorf("append chunks: %w", err)
	}

	return len(chunks), nil
}

func (uc *ProcessSourceUseCase) loadSegments(ctx context.Context, src *domain.Source) ([]domain.Segment, error) {
	if src.Kind == domain.SourceYouTube {
		segments, err := uc.transcripts.Fetch(ctx, src.Name)
		if err != nil {
			return nil, fmt.Errorf("fetch transcript: %w", err)
		}
		return segments, nil
	}

	reader, err := uc.storage.Open(ctx, src.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source payload: %w", err)
	}
	defer reader.Close()

	segments, err := uc.parser.Parse(ctx, src, reader)
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	return segments, nil
}

func (uc *ProcessSourceUseCase) buildChunks(src *domain.Source, segments []domain.Segment) []domain.Chunk {
	var chunks []domain.Chunk
	for _, segment := range segments {
		for _, text := range uc.chunker.Split(segment.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.NewString(),
				Collection: src.Collection,
				SourceID:   src.ID,
				SourceName: src.Name,
				Kind:       src.Kind,
				Locator:    segment.Locator,
				Text:       text,
			})
		}
	}
	return chunks
}

func (uc *ProcessSourceUseCase) markFailed(ctx context.Context, sourceID string, cause error) error {
	msg := cause.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return uc.repo.UpdateStatus(ctx, sourceID, domain.StatusFailed, msg)
}
