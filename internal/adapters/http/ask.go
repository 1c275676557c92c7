package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"lumi/internal/core/domain"
)

type askRequest struct {
	Question     string `json:"question"`
	Collection   string `json:"collection"`
	RetrieveOnly bool   `json:"retrieve_only"`

	// Retrieval knobs are pointers so an absent field falls back to the
	// server defaults while an explicit zero keeps its meaning
	// (dense_weight 0 is a valid sparse-only request).
	TopK        *int     `json:"top_k"`
	UseReranker *bool    `json:"use_reranker"`
	DenseWeight *float64 `json:"dense_weight"`
	Candidates  *int     `json:"candidates"`
	Fusion      *string  `json:"fusion"`
	RRFK        *int     `json:"rrf_k"`
	RerankTopN  *int     `json:"rerank_top_n"`
}

func (rt *Router) askHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Collection) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "collection is required"})
		return
	}

	cfg := rt.resolveConfig(req)
	start := time.Now()

	if req.RetrieveOnly {
		result, err := rt.retriever.Retrieve(r.Context(), req.Question, req.Collection, cfg)
		if err != nil {
			writeError(w, err)
			return
		}
		degraded := cfg.UseReranker && !result.Reranked
		observeRetrieval(rt.metrics, "retrieve_only", len(result.Candidates), start, degraded)
		writeJSON(w, http.StatusOK, result)
		return
	}

	answer, err := rt.ask.Ask(r.Context(), req.Question, req.Collection, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	degraded := cfg.UseReranker && !answer.Reranked
	observeRetrieval(rt.metrics, "answer", len(answer.Sources), start, degraded)
	writeJSON(w, http.StatusOK, answer)
}

// resolveConfig merges the per-request overrides onto the server defaults.
// The resulting config is fully resolved; nothing downstream guesses about
// absent values.
func (rt *Router) resolveConfig(req askRequest) domain.RetrievalConfig {
	cfg := rt.defaults
	if req.TopK != nil {
		cfg.TopK = *req.TopK
	}
	if req.UseReranker != nil {
		cfg.UseReranker = *req.UseReranker
	}
	if req.DenseWeight != nil {
		cfg.DenseWeight = *req.DenseWeight
	}
	if req.Candidates != nil {
		cfg.Candidates = *req.Candidates
	}
	if req.Fusion != nil {
		cfg.Fusion = domain.FusionStrategy(*req.Fusion)
	}
	if req.RRFK != nil {
		cfg.RRFK = *req.RRFK
	}
	if req.RerankTopN != nil {
		cfg.RerankTopN = *req.RerankTopN
	}
	return cfg
}
