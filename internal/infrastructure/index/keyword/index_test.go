package keyword

import (
	"context"
	"reflect"
	"testing"

	"lumi/internal/core/domain"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex()
	err := idx.IndexChunks(context.Background(), "bio101", []domain.Chunk{
		{ID: "a", Text: "mitochondria is the powerhouse of the cell"},
		{ID: "b", Text: "cell membrane regulates transport"},
		{ID: "c", Text: "mitochondria produces ATP"},
	})
	if err != nil {
		t.Fatalf("index error: %v", err)
	}
	return idx
}

func TestSearchRanksKeywordMatchesFirst(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search(context.Background(), "bio101", "mitochondria function", 10)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected only the two mitochondria chunks, got %d", len(hits))
	}
	for _, hit := range hits {
		if hit.Chunk.ID == "b" {
			t.Fatalf("chunk b must not match")
		}
		if hit.Provenance != domain.ProvenanceSparse {
			t.Fatalf("expected sparse provenance, got %s", hit.Provenance)
		}
	}
	// Shorter document with the same term wins BM25 length normalization.
	if hits[0].Chunk.ID != "c" {
		t.Fatalf("expected c ranked first, got %s", hits[0].Chunk.ID)
	}
}

func TestSearchRespectsLimitAndDescendingOrder(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search(context.Background(), "bio101", "cell mitochondria", 1)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit with limit=1, got %d", len(hits))
	}

	all, err := idx.Search(context.Background(), "bio101", "cell mitochondria", 10)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Score > all[i-1].Score {
			t.Fatalf("scores not descending at %d: %v", i, all)
		}
	}
}

func TestSearchUnknownOrEmptyCollection(t *testing.T) {
	idx := NewIndex()

	hits, err := idx.Search(context.Background(), "missing", "anything", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty result, got %d", len(hits))
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	idx := seedIndex(t)

	first, err := idx.Search(context.Background(), "bio101", "cell", 10)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	second, err := idx.Search(context.Background(), "bio101", "cell", 10)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("search not deterministic:\n%v\n%v", first, second)
	}
}

func TestDropRemovesCollection(t *testing.T) {
	idx := seedIndex(t)
	if err := idx.Drop(context.Background(), "bio101"); err != nil {
		t.Fatalf("drop error: %v", err)
	}
	hits, _ := idx.Search(context.Background(), "bio101", "mitochondria", 5)
	if len(hits) != 0 {
		t.Fatalf("expected no hits after drop, got %d", len(hits))
	}
}

func TestTokenizeMatchesIndexAndQuerySide(t *testing.T) {
	if got := Tokenize("Mitochondria, the POWER-house (of) the cell!"); !reflect.DeepEqual(got, []string{"mitochondria", "the", "power", "house", "of", "the", "cell"}) {
		t.Fatalf("Tokenize = %v", got)
	}
	if got := Tokenize("???"); len(got) != 0 {
		t.Fatalf("expected no tokens for punctuation, got %v", got)
	}
	if got := Tokenize(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
