package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/embedding"
	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"

	"github.com/panjf2000/ants/v2"
)

// EmbedderStage computes a vector for every chunk that does not yet carry one
// for the configured embedding version. Chunks embed in parallel on a bounded
// goroutine pool; the vector and its provenance fields land in one upsert.
type EmbedderStage struct {
	provider    embedding.Provider
	docRepo     contract.DocumentRepository
	chunkRepo   contract.ChunkRepository
	dim         int
	version     string
	concurrency int
}

func NewEmbedderStage(
	provider embedding.Provider,
	docRepo contract.DocumentRepository,
	chunkRepo contract.ChunkRepository,
	dim int,
	version string,
	concurrency int,
) *EmbedderStage {
	if concurrency < 1 {
		concurrency = 4
	}
	return &EmbedderStage{
		provider:    provider,
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		dim:         dim,
		version:     version,
		concurrency: concurrency,
	}
}

func (s *EmbedderStage) Name() string     { return pipeline.StageEmbedder }
func (s *EmbedderStage) InTopic() string  { return events.TopicChunked }
func (s *EmbedderStage) OutTopic() string { return events.TopicEmbedded }

func (s *EmbedderStage) Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error) {
	doc, err := loadDocument(ctx, s.docRepo, pipeline.StageEmbedder, evt.DocId)
	if err != nil {
		return nil, err
	}

	if pipeline.AtOrPast(doc.Status, pipeline.StatusEmbedded) {
		next := *evt
		next.ChunkCount = doc.ChunkCount
		return &StageResult{Next: &next, Skipped: true}, nil
	}

	chunks, err := s.chunkRepo.FindByDocId(ctx, evt.DocId)
	if err != nil {
		return nil, pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeStoreError, err)
	}
	if len(chunks) == 0 {
		return nil, pipeline.Ordering(pipeline.StageEmbedder, pipeline.CodeDocumentMissing,
			errors.New("document has no chunk records"))
	}

	var pending []*entity.Chunk
	for _, c := range chunks {
		if !c.Embedded(s.version) {
			pending = append(pending, c)
		}
	}

	if err := s.embedAll(ctx, pending); err != nil {
		return nil, err
	}

	if len(pending) > 0 {
		if err := s.chunkRepo.UpsertBulk(ctx, pending); err != nil {
			return nil, pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeStoreError, err)
		}
	}

	doc.Advance(pipeline.StatusEmbedded, time.Now().UTC())
	if err := s.docRepo.Upsert(ctx, doc); err != nil {
		return nil, pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeStoreError, err)
	}

	next := *evt
	next.ChunkCount = doc.ChunkCount
	return &StageResult{Next: &next}, nil
}

func (s *EmbedderStage) embedAll(ctx context.Context, pending []*entity.Chunk) error {
	if len(pending) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.concurrency)
	if err != nil {
		return pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeEmbeddingServiceErr, err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, c := range pending {
		chunk := c
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			setErr(s.embedOne(ctx, chunk))
		}); submitErr != nil {
			wg.Done()
			setErr(pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeEmbeddingServiceErr, submitErr))
		}
	}
	wg.Wait()

	return firstErr
}

func (s *EmbedderStage) embedOne(ctx context.Context, chunk *entity.Chunk) error {
	result, err := s.provider.Embed(ctx, chunk.ChunkText)
	if err != nil {
		var svcErr *embedding.ServiceError
		if errors.As(err, &svcErr) && !svcErr.Retryable {
			return pipeline.Permanent(pipeline.StageEmbedder, pipeline.CodeEmbeddingServiceErr, err)
		}
		return pipeline.Transient(pipeline.StageEmbedder, pipeline.CodeEmbeddingServiceErr, err)
	}
	if result.Dim != s.dim {
		return pipeline.Permanent(pipeline.StageEmbedder, pipeline.CodeEmbeddingDimMismatch,
			fmt.Errorf("model %s returned dim %d, configured dim is %d", result.Model, result.Dim, s.dim))
	}

	chunk.Embedding = result.Values
	chunk.EmbeddingModel = result.Model
	chunk.EmbeddingDim = result.Dim
	chunk.EmbeddingVersion = s.version
	return nil
}
