package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"docstream-be/internal/dto"
	"docstream-be/internal/entity"
	"docstream-be/internal/pkg/serverutils"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/cache"
	"docstream-be/pkg/embedding"
	"docstream-be/pkg/pipeline"
)

type stubDocRepo struct {
	doc   *entity.Document
	lastQ contract.ListQuery
}

func (r *stubDocRepo) Upsert(ctx context.Context, doc *entity.Document) error { return nil }
func (r *stubDocRepo) FindByDocId(ctx context.Context, docId string) (*entity.Document, error) {
	if r.doc != nil && r.doc.DocId == docId {
		return r.doc, nil
	}
	return nil, nil
}
func (r *stubDocRepo) List(ctx context.Context, q contract.ListQuery) ([]*entity.Document, error) {
	r.lastQ = q
	if r.doc == nil || (q.Status != "" && string(r.doc.Status) != q.Status) {
		return nil, nil
	}
	return []*entity.Document{r.doc}, nil
}
func (r *stubDocRepo) Count(ctx context.Context, status string) (int64, error) {
	if r.doc == nil || (status != "" && string(r.doc.Status) != status) {
		return 0, nil
	}
	return 1, nil
}

type stubChunkRepo struct {
	chunks  []*entity.Chunk
	hits    []*contract.ScoredChunk
	lastQ   contract.SearchQuery
	queried int
}

func (r *stubChunkRepo) UpsertBulk(ctx context.Context, chunks []*entity.Chunk) error { return nil }
func (r *stubChunkRepo) FindByDocId(ctx context.Context, docId string) ([]*entity.Chunk, error) {
	return r.chunks, nil
}
func (r *stubChunkRepo) CountEmbedded(ctx context.Context, docId, version string) (int64, error) {
	return 0, nil
}
func (r *stubChunkRepo) Search(ctx context.Context, q contract.SearchQuery) ([]*contract.ScoredChunk, error) {
	r.lastQ = q
	r.queried++
	return r.hits, nil
}

type countingProvider struct {
	dim   int
	calls int
}

func (p *countingProvider) Embed(ctx context.Context, text string) (*embedding.Result, error) {
	p.calls++
	return &embedding.Result{Values: make([]float32, p.dim), Model: "m", Dim: p.dim}, nil
}
func (p *countingProvider) ModelId() string { return "m" }

func newTestRetrieval(docRepo *stubDocRepo, chunkRepo *stubChunkRepo, provider embedding.Provider) IRetrievalService {
	return NewRetrievalService(docRepo, chunkRepo, provider, cache.NewMemoryCache(time.Minute), 4, "cosine", noopLogger{})
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func TestQueryUsesVectorCache(t *testing.T) {
	provider := &countingProvider{dim: 4}
	chunkRepo := &stubChunkRepo{}
	svc := newTestRetrieval(&stubDocRepo{}, chunkRepo, provider)

	req := &dto.QueryRequest{Text: "what is in the report?"}
	if _, err := svc.Query(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Query(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if provider.calls != 1 {
		t.Errorf("embed calls = %d, want 1 (second query must hit the cache)", provider.calls)
	}
	if chunkRepo.queried != 2 {
		t.Errorf("searches = %d, want 2", chunkRepo.queried)
	}
}

func TestQueryDefaultsK(t *testing.T) {
	chunkRepo := &stubChunkRepo{}
	svc := newTestRetrieval(&stubDocRepo{}, chunkRepo, &countingProvider{dim: 4})

	if _, err := svc.Query(context.Background(), &dto.QueryRequest{Text: "q"}); err != nil {
		t.Fatal(err)
	}
	if chunkRepo.lastQ.K != defaultQueryK {
		t.Errorf("K = %d, want %d", chunkRepo.lastQ.K, defaultQueryK)
	}
	if chunkRepo.lastQ.Metric != "cosine" {
		t.Errorf("metric = %q", chunkRepo.lastQ.Metric)
	}
}

func TestQueryMapsResults(t *testing.T) {
	chunkRepo := &stubChunkRepo{hits: []*contract.ScoredChunk{
		{Chunk: &entity.Chunk{ChunkId: "c1", DocId: "d1", ChunkText: "hit", PageStart: 2, PageEnd: 2}, Score: 0.93},
	}}
	svc := newTestRetrieval(&stubDocRepo{}, chunkRepo, &countingProvider{dim: 4})

	resp, err := svc.Query(context.Background(), &dto.QueryRequest{Text: "q", K: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	got := resp.Results[0]
	if got.ChunkId != "c1" || got.Score != 0.93 || got.PageStart != 2 {
		t.Errorf("mapped result = %+v", got)
	}
}

func TestQueryEmptyResultIsNotAnError(t *testing.T) {
	svc := newTestRetrieval(&stubDocRepo{}, &stubChunkRepo{}, &countingProvider{dim: 4})

	resp, err := svc.Query(context.Background(), &dto.QueryRequest{Text: "nothing matches"})
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %d, want 0", len(resp.Results))
	}
}

func TestGetChunksUnknownDocument(t *testing.T) {
	svc := newTestRetrieval(&stubDocRepo{}, &stubChunkRepo{}, &countingProvider{dim: 4})

	_, err := svc.GetChunksByDocId(context.Background(), "unknown")
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Errorf("expected 404 ApiError, got %v", err)
	}
}

func TestGetChunksInFlightDocument(t *testing.T) {
	doc := &entity.Document{DocId: "d1", Status: pipeline.StatusChunked}
	chunkRepo := &stubChunkRepo{chunks: []*entity.Chunk{
		{ChunkId: "c1", DocId: "d1", SequenceIndex: 0, ChunkText: "early"},
	}}
	svc := newTestRetrieval(&stubDocRepo{doc: doc}, chunkRepo, &countingProvider{dim: 4})

	resp, err := svc.GetChunksByDocId(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Indexed {
		t.Error("CHUNKED document must report Indexed=false")
	}
	if len(resp.Chunks) != 1 || resp.Chunks[0].HasEmbedding {
		t.Errorf("chunks = %+v", resp.Chunks)
	}
}
