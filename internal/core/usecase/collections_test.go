package usecase

import (
	"context"
	"testing"

	"lumi/internal/core/domain"
)

func TestCollectionCreateAndDuplicate(t *testing.T) {
	store := newFakeChunkStore()
	uc := NewCollectionUseCase(store, &fakeVectorIndex{}, &fakeKeywordIndex{}, newFakeSourceRepo())

	if err := uc.Create(context.Background(), "week1"); err != nil {
		t.Fatalf("create error: %v", err)
	}
	err := uc.Create(context.Background(), "week1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate, got %v", err)
	}
}

func TestCollectionDeleteDropsEverything(t *testing.T) {
	store := newFakeChunkStore()
	dense := &fakeVectorIndex{}
	sparse := &fakeKeywordIndex{}
	repo := newFakeSourceRepo()
	uc := NewCollectionUseCase(store, dense, sparse, repo)

	_ = store.Create("week1")
	_ = store.Append("week1", []domain.Chunk{{ID: "c1"}})

	if err := uc.Delete(context.Background(), "week1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if store.Exists("week1") {
		t.Fatalf("expected collection removed from store")
	}
	if len(dense.dropped) != 1 || len(sparse.dropped) != 1 {
		t.Fatalf("expected both indexes dropped, got dense=%v sparse=%v", dense.dropped, sparse.dropped)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "week1" {
		t.Fatalf("expected source metadata deleted, got %v", repo.deleted)
	}
	if store.exclusiveCalls != 1 {
		t.Fatalf("expected deletion under exclusive lock, got %d", store.exclusiveCalls)
	}
}

func TestCollectionDeleteUnknown(t *testing.T) {
	uc := NewCollectionUseCase(newFakeChunkStore(), &fakeVectorIndex{}, &fakeKeywordIndex{}, newFakeSourceRepo())

	err := uc.Delete(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}
