package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lumi/internal/core/domain"
)

func TestGroundedPromptCarriesExcerptsAndLocators(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed")
	gen := NewGenerator(client)
	candidates := []domain.ScoredCandidate{
		{Chunk: domain.Chunk{SourceName: "lecture.pdf", Kind: domain.SourcePDF, Locator: domain.Locator{Page: 3}, Text: "mitochondria produce ATP"}, Score: 0.99},
		{Chunk: domain.Chunk{SourceName: "dQw4w9WgXcQ", Kind: domain.SourceYouTube, Locator: domain.Locator{StartSec: 120}, Text: "glycolysis overview"}, Score: 0.71},
	}
	if _, err := gen.GenerateGrounded(context.Background(), "how is ATP made?", candidates); err != nil {
		t.Fatalf("GenerateGrounded() error = %v", err)
	}
	for _, want := range []string{"how is ATP made?", "mitochondria produce ATP", "page=3", "t=120s", "strictly from the excerpts"} {
		if !strings.Contains(capturedPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, capturedPrompt)
		}
	}
}

func TestAnalysisPromptCarriesGroundedAnswer(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"broader view"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed")
	gen := NewGenerator(client)
	got, err := gen.GenerateAnalysis(context.Background(), "how is ATP made?", "ATP is made in mitochondria [1].")
	if err != nil {
		t.Fatalf("GenerateAnalysis() error = %v", err)
	}
	if got != "broader view" {
		t.Fatalf("analysis = %q", got)
	}
	if !strings.Contains(capturedPrompt, "ATP is made in mitochondria [1].") {
		t.Fatalf("prompt missing grounded answer:\n%s", capturedPrompt)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed")
	embedder := NewEmbedder(client)
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("bad gateway should classify as temporary, got %v", err)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	client := New("http://unused", "gen", "embed")
	embedder := NewEmbedder(client)
	vectors, err := embedder.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors, got %v", vectors)
	}
}
