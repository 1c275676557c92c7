package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"lumi/internal/core/domain"
)

type fakeEmbedder struct {
	queryVec []float32
	vectors  [][]float32
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.queryVec != nil {
		return f.queryVec, nil
	}
	return []float32{1, 0}, nil
}

type fakeVectorIndex struct {
	hits    []domain.ScoredCandidate
	err     error
	indexed int
	dropped []string
}

func (f *fakeVectorIndex) IndexChunks(_ context.Context, _ string, chunks []domain.Chunk, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.indexed += len(chunks)
	return nil
}

func (f *fakeVectorIndex) Search(_ context.Context, _ string, _ []float32, limit int) ([]domain.ScoredCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeVectorIndex) Drop(_ context.Context, collection string) error {
	f.dropped = append(f.dropped, collection)
	return nil
}

type fakeKeywordIndex struct {
	hits    []domain.ScoredCandidate
	err     error
	indexed int
	dropped []string
}

func (f *fakeKeywordIndex) IndexChunks(_ context.Context, _ string, chunks []domain.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.indexed += len(chunks)
	return nil
}

func (f *fakeKeywordIndex) Search(_ context.Context, _ string, _ string, limit int) ([]domain.ScoredCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeKeywordIndex) Drop(_ context.Context, collection string) error {
	f.dropped = append(f.dropped, collection)
	return nil
}

type fakeScorer struct {
	scoreByText map[string]float64
	err         error
	calls       int
}

func (f *fakeScorer) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = f.scoreByText[text]
	}
	return out, nil
}

type fakeChunkStore struct {
	chunks         map[string][]domain.Chunk
	exclusiveCalls int
	sharedCalls    int
	releaseOrder   []string
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{chunks: make(map[string][]domain.Chunk)}
}

func (f *fakeChunkStore) Create(collection string) error {
	if _, ok := f.chunks[collection]; ok {
		return errors.New("collection exists")
	}
	f.chunks[collection] = nil
	return nil
}

func (f *fakeChunkStore) Exists(collection string) bool {
	_, ok := f.chunks[collection]
	return ok
}

func (f *fakeChunkStore) Append(collection string, chunks []domain.Chunk) error {
	f.chunks[collection] = append(f.chunks[collection], chunks...)
	return nil
}

func (f *fakeChunkStore) Count(collection string) int {
	return len(f.chunks[collection])
}

func (f *fakeChunkStore) List() []domain.CollectionInfo {
	out := make([]domain.CollectionInfo, 0, len(f.chunks))
	for name, chunks := range f.chunks {
		out = append(out, domain.CollectionInfo{Name: name, Chunks: len(chunks)})
	}
	return out
}

func (f *fakeChunkStore) Drop(collection string) error {
	delete(f.chunks, collection)
	return nil
}

func (f *fakeChunkStore) Exclusive(_ string) func() {
	f.exclusiveCalls++
	return func() { f.releaseOrder = append(f.releaseOrder, "exclusive") }
}

func (f *fakeChunkStore) Shared(_ string) func() {
	f.sharedCalls++
	return func() { f.releaseOrder = append(f.releaseOrder, "shared") }
}

type fakeSourceRepo struct {
	sources  map[string]*domain.Source
	statuses []domain.SourceStatus
	readyID  string
	readyN   int
	deleted  []string
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[string]*domain.Source)}
}

func (f *fakeSourceRepo) Create(_ context.Context, src *domain.Source) error {
	f.sources[src.ID] = src
	return nil
}

func (f *fakeSourceRepo) GetByID(_ context.Context, id string) (*domain.Source, error) {
	src, ok := f.sources[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSourceNotFound, "get source", errors.New(id))
	}
	return src, nil
}

func (f *fakeSourceRepo) ListByCollection(_ context.Context, collection string) ([]domain.Source, error) {
	var out []domain.Source
	for _, src := range f.sources {
		if src.Collection == collection {
			out = append(out, *src)
		}
	}
	return out, nil
}

func (f *fakeSourceRepo) UpdateStatus(_ context.Context, id string, status domain.SourceStatus, errMessage string) error {
	f.statuses = append(f.statuses, status)
	if src, ok := f.sources[id]; ok {
		src.Status = status
		src.Error = errMessage
	}
	return nil
}

func (f *fakeSourceRepo) MarkReady(_ context.Context, id string, chunkCount int) error {
	f.readyID = id
	f.readyN = chunkCount
	if src, ok := f.sources[id]; ok {
		src.Status = domain.StatusReady
		src.ChunkCount = chunkCount
	}
	return nil
}

func (f *fakeSourceRepo) DeleteByCollection(_ context.Context, collection string) error {
	f.deleted = append(f.deleted, collection)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishSourceIngested(_ context.Context, sourceID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, sourceID)
	return nil
}

func (f *fakeQueue) SubscribeSourceIngested(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeParser struct {
	segments []domain.Segment
	err      error
}

func (f *fakeParser) Parse(_ context.Context, _ *domain.Source, _ io.Reader) ([]domain.Segment, error) {
	return f.segments, f.err
}

type fakeTranscripts struct {
	segments []domain.Segment
	err      error
}

func (f *fakeTranscripts) Fetch(_ context.Context, _ string) ([]domain.Segment, error) {
	return f.segments, f.err
}

type passthroughChunker struct{}

func (passthroughChunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []string{text}
}

type fakeGenerator struct {
	grounded    string
	analysis    string
	groundedErr error
	analysisErr error
}

func (f *fakeGenerator) GenerateGrounded(_ context.Context, _ string, _ []domain.ScoredCandidate) (string, error) {
	if f.groundedErr != nil {
		return "", f.groundedErr
	}
	return f.grounded, nil
}

func (f *fakeGenerator) GenerateAnalysis(_ context.Context, _, _ string) (string, error) {
	if f.analysisErr != nil {
		return "", f.analysisErr
	}
	return f.analysis, nil
}
