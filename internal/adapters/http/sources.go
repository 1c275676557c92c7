package httpadapter

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"lumi/internal/core/domain"
)

// maxUploadBytes bounds multipart uploads; lecture PDFs rarely exceed this.
const maxUploadBytes = 64 << 20

func (rt *Router) handleCollectionSources(w http.ResponseWriter, r *http.Request, collection string) {
	switch r.Method {
	case http.MethodGet:
		sources, err := rt.sources.ListByCollection(r.Context(), collection)
		if err != nil {
			writeError(w, err)
			return
		}
		if sources == nil {
			sources = []domain.Source{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
	case http.MethodPost:
		rt.uploadSource(w, r, collection)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadSource(w http.ResponseWriter, r *http.Request, collection string) {
	contentType := r.Header.Get("Content-Type")

	// JSON body registers a YouTube video; multipart uploads a file.
	if strings.HasPrefix(contentType, "application/json") {
		var req struct {
			YouTubeURL string `json:"youtube_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if strings.TrimSpace(req.YouTubeURL) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "youtube_url is required"})
			return
		}
		src, err := rt.ingest.IngestYouTube(r.Context(), collection, req.YouTubeURL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, src)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	src, err := rt.ingest.IngestFile(
		r.Context(),
		collection,
		fileHeader.Filename,
		kindForFilename(fileHeader.Filename),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, src)
}

func (rt *Router) getSourceByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/sources/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source id is required"})
		return
	}

	src, err := rt.sources.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func kindForFilename(filename string) domain.SourceKind {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return domain.SourcePDF
	}
	return domain.SourcePlainText
}
