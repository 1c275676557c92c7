package usecase

import (
	"context"
	"fmt"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
)

// CollectionUseCase manages knowledge-base lifecycle. Deletion drops the
// collection's chunk store entries, both indexes, and the source metadata
// rows; it holds the exclusive lock so no retrieval observes a half-dropped
// collection.
type CollectionUseCase struct {
	store   ports.ChunkStore
	dense   ports.VectorIndex
	sparse  ports.KeywordIndex
	sources ports.SourceRepository
}

func NewCollectionUseCase(
	store ports.ChunkStore,
	dense ports.VectorIndex,
	sparse ports.KeywordIndex,
	sources ports.SourceRepository,
) *CollectionUseCase {
	return &CollectionUseCase{
		store:   store,
		dense:   dense,
		sparse:  sparse,
		sources: sources,
	}
}

func (uc *CollectionUseCase) Create(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "create collection", err)
	}
	if uc.store.Exists(name) {
		return domain.WrapError(domain.ErrInvalidInput, "create collection", fmt.Errorf("collection %q already exists", name))
	}
	return uc.store.Create(name)
}

func (uc *CollectionUseCase) List(_ context.Context) []domain.CollectionInfo {
	return uc.store.List()
}

func (uc *CollectionUseCase) Delete(ctx context.Context, name string) error {
	if !uc.store.Exists(name) {
		return domain.WrapError(domain.ErrCollectionNotFound, "delete collection", fmt.Errorf("collection %q", name))
	}

	release := uc.store.Exclusive(name)
	defer release()

	if err := uc.dense.Drop(ctx, name); err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "drop dense index", err)
	}
	if err := uc.sparse.Drop(ctx, name); err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "drop sparse index", err)
	}
	if err := uc.sources.DeleteByCollection(ctx, name); err != nil {
		return fmt.Errorf("delete source metadata: %w", err)
	}
	return uc.store.Drop(name)
}
