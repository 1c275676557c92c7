package httpadapter

import (
	"context"
	"io"

	"lumi/internal/core/domain"
	"lumi/internal/observability/metrics"
)

type stubIngestor struct {
	src     *domain.Source
	err     error
	gotKind domain.SourceKind
	gotName string
	gotURL  string
}

func (s *stubIngestor) IngestFile(_ context.Context, _, filename string, kind domain.SourceKind, body io.Reader) (*domain.Source, error) {
	s.gotName = filename
	s.gotKind = kind
	_, _ = io.Copy(io.Discard, body)
	return s.src, s.err
}

func (s *stubIngestor) IngestYouTube(_ context.Context, _, videoURL string) (*domain.Source, error) {
	s.gotURL = videoURL
	return s.src, s.err
}

type stubAsk struct {
	answer *domain.Answer
	err    error
	gotCfg domain.RetrievalConfig
	calls  int
}

func (s *stubAsk) Ask(_ context.Context, _, _ string, cfg domain.RetrievalConfig) (*domain.Answer, error) {
	s.calls++
	s.gotCfg = cfg
	return s.answer, s.err
}

type stubRetriever struct {
	result *domain.RetrievalResult
	err    error
	gotCfg domain.RetrievalConfig
}

func (s *stubRetriever) Retrieve(_ context.Context, _, _ string, cfg domain.RetrievalConfig) (*domain.RetrievalResult, error) {
	s.gotCfg = cfg
	return s.result, s.err
}

type stubCollections struct {
	infos   []domain.CollectionInfo
	err     error
	created []string
	deleted []string
}

func (s *stubCollections) Create(_ context.Context, name string) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, name)
	return nil
}

func (s *stubCollections) List(_ context.Context) []domain.CollectionInfo {
	return s.infos
}

func (s *stubCollections) Delete(_ context.Context, name string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, name)
	return nil
}

type stubSources struct {
	src  *domain.Source
	list []domain.Source
	err  error
}

func (s *stubSources) GetByID(_ context.Context, _ string) (*domain.Source, error) {
	return s.src, s.err
}

func (s *stubSources) ListByCollection(_ context.Context, _ string) ([]domain.Source, error) {
	return s.list, s.err
}

type routerFixture struct {
	ingestor    *stubIngestor
	ask         *stubAsk
	retriever   *stubRetriever
	collections *stubCollections
	sources     *stubSources
	router      *Router
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		ingestor:    &stubIngestor{},
		ask:         &stubAsk{},
		retriever:   &stubRetriever{},
		collections: &stubCollections{},
		sources:     &stubSources{},
	}
	defaults := domain.RetrievalConfig{
		TopK:        5,
		DenseWeight: 0.5,
		Candidates:  30,
		Fusion:      domain.FusionWeighted,
		RRFK:        60,
		RerankTopN:  20,
	}
	f.router = NewRouter(
		f.ingestor,
		f.ask,
		f.retriever,
		f.collections,
		f.sources,
		metrics.NewServerMetrics("test"),
		defaults,
		0, // rate limiting off unless a test enables it
		0,
	)
	return f
}
