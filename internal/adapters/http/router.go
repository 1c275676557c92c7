package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
	"lumi/internal/observability/metrics"
)

const serviceName = "lumid"

type Router struct {
	ingest      ports.SourceIngestor
	ask         ports.AskService
	retriever   ports.Retriever
	collections ports.CollectionService
	sources     ports.SourceReader
	metrics     *metrics.ServerMetrics
	defaults    domain.RetrievalConfig

	askRateRPS   float64
	askRateBurst int
}

func NewRouter(
	ingest ports.SourceIngestor,
	ask ports.AskService,
	retriever ports.Retriever,
	collections ports.CollectionService,
	sources ports.SourceReader,
	serverMetrics *metrics.ServerMetrics,
	defaults domain.RetrievalConfig,
	askRateRPS float64,
	askRateBurst int,
) *Router {
	return &Router{
		ingest:       ingest,
		ask:          ask,
		retriever:    retriever,
		collections:  collections,
		sources:      sources,
		metrics:      serverMetrics,
		defaults:     defaults,
		askRateRPS:   askRateRPS,
		askRateBurst: askRateBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/collections", rt.handleCollections)
	mux.HandleFunc("/v1/collections/", rt.handleCollectionByName)
	mux.HandleFunc("/v1/sources/", rt.getSourceByID)
	mux.Handle("/v1/ask", rateLimitMiddleware(http.HandlerFunc(rt.askHandler), rt.askRateRPS, rt.askRateBurst))
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, maxInFlightRequests, maxCapacityWait)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

const (
	maxInFlightRequests = 256
	maxCapacityWait     = 2 * time.Second
)

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleCollections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"collections": rt.collections.List(r.Context())})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if err := rt.collections.Create(r.Context(), req.Name); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleCollectionByName routes /v1/collections/{name} and
// /v1/collections/{name}/sources.
func (rt *Router) handleCollectionByName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/collections/")
	name, sub, _ := strings.Cut(rest, "/")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "collection name is required"})
		return
	}

	switch sub {
	case "":
		if r.Method != http.MethodDelete {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := rt.collections.Delete(r.Context(), name); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case "sources":
		rt.handleCollectionSources(w, r, name)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func observeRetrieval(m *metrics.ServerMetrics, mode string, selected int, start time.Time, degraded bool) {
	m.RecordRetrieval(serviceName, mode, selected, time.Since(start))
	if degraded {
		m.RecordRerankDegraded(serviceName)
	}
}
