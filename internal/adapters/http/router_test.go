package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lumi/internal/core/domain"
)

func TestHealthz(t *testing.T) {
	f := newRouterFixture()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}

func TestCreateAndListCollections(t *testing.T) {
	f := newRouterFixture()
	handler := f.router.Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/collections", strings.NewReader(`{"name":"bio101"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", res.Code)
	}
	if len(f.collections.created) != 1 || f.collections.created[0] != "bio101" {
		t.Fatalf("created = %v", f.collections.created)
	}

	f.collections.infos = []domain.CollectionInfo{{Name: "bio101", Chunks: 4}}
	req = httptest.NewRequest(http.MethodGet, "/v1/collections", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", res.Code)
	}
	var listResp struct {
		Collections []domain.CollectionInfo `json:"collections"`
	}
	if err := json.NewDecoder(res.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Collections) != 1 || listResp.Collections[0].Chunks != 4 {
		t.Fatalf("collections = %+v", listResp.Collections)
	}
}

func TestDeleteCollection(t *testing.T) {
	f := newRouterFixture()
	req := httptest.NewRequest(http.MethodDelete, "/v1/collections/bio101", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if len(f.collections.deleted) != 1 || f.collections.deleted[0] != "bio101" {
		t.Fatalf("deleted = %v", f.collections.deleted)
	}
}

func TestDeleteUnknownCollectionMapsTo404(t *testing.T) {
	f := newRouterFixture()
	f.collections.err = domain.ErrCollectionNotFound

	req := httptest.NewRequest(http.MethodDelete, "/v1/collections/ghost", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
}

func TestUploadFileSource(t *testing.T) {
	f := newRouterFixture()
	f.ingestor.src = &domain.Source{ID: "s1", Collection: "bio101", Name: "lecture.pdf", Kind: domain.SourcePDF, Status: domain.StatusUploaded}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "lecture.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("%PDF-1.4 payload"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/collections/bio101/sources", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", res.Code, res.Body.String())
	}
	if f.ingestor.gotKind != domain.SourcePDF || f.ingestor.gotName != "lecture.pdf" {
		t.Fatalf("ingestor got kind=%s name=%s", f.ingestor.gotKind, f.ingestor.gotName)
	}
}

func TestUploadYouTubeSource(t *testing.T) {
	f := newRouterFixture()
	f.ingestor.src = &domain.Source{ID: "s2", Kind: domain.SourceYouTube, Status: domain.StatusUploaded}

	req := httptest.NewRequest(http.MethodPost, "/v1/collections/bio101/sources",
		strings.NewReader(`{"youtube_url":"https://youtu.be/dQw4w9WgXcQ"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", res.Code, res.Body.String())
	}
	if f.ingestor.gotURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Fatalf("ingestor got url %q", f.ingestor.gotURL)
	}
}

func TestListSourcesReturnsEmptyArray(t *testing.T) {
	f := newRouterFixture()
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/bio101/sources", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"sources":[]`) {
		t.Fatalf("expected empty array, got %s", res.Body.String())
	}
}

func TestGetSourceByID(t *testing.T) {
	f := newRouterFixture()
	f.sources.src = &domain.Source{ID: "s1", Status: domain.StatusReady, ChunkCount: 7}

	req := httptest.NewRequest(http.MethodGet, "/v1/sources/s1", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	var src domain.Source
	if err := json.NewDecoder(res.Body).Decode(&src); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.Status != domain.StatusReady || src.ChunkCount != 7 {
		t.Fatalf("source = %+v", src)
	}
}

func TestGetUnknownSourceMapsTo404(t *testing.T) {
	f := newRouterFixture()
	f.sources.err = domain.ErrSourceNotFound

	req := httptest.NewRequest(http.MethodGet, "/v1/sources/missing", nil)
	res := httptest.NewRecorder()
	f.router.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
}
