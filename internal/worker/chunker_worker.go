package worker

import (
	"context"
	"errors"
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/artifact"
	"docstream-be/pkg/chunker"
	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"
)

// ChunkerStage splits the stored OCR artifact into chunk records. All chunks
// are written before the status flips to CHUNKED, so a crash mid-write only
// ever leaves a partial set behind a pre-CHUNKED status, and the retried pass
// overwrites it by deterministic id.
type ChunkerStage struct {
	artifacts *artifact.Store
	docRepo   contract.DocumentRepository
	chunkRepo contract.ChunkRepository
	cfg       chunker.Config
}

func NewChunkerStage(
	artifacts *artifact.Store,
	docRepo contract.DocumentRepository,
	chunkRepo contract.ChunkRepository,
	cfg chunker.Config,
) *ChunkerStage {
	return &ChunkerStage{
		artifacts: artifacts,
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		cfg:       cfg,
	}
}

func (s *ChunkerStage) Name() string     { return pipeline.StageChunker }
func (s *ChunkerStage) InTopic() string  { return events.TopicOcrDone }
func (s *ChunkerStage) OutTopic() string { return events.TopicChunked }

func (s *ChunkerStage) Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error) {
	doc, err := loadDocument(ctx, s.docRepo, pipeline.StageChunker, evt.DocId)
	if err != nil {
		return nil, err
	}

	if pipeline.AtOrPast(doc.Status, pipeline.StatusChunked) {
		next := *evt
		next.ChunkCount = doc.ChunkCount
		return &StageResult{Next: &next, Skipped: true}, nil
	}

	result, err := s.artifacts.Get(evt.DocId)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			// OCR_DONE without an artifact means the event outran the write
			// or the artifact store lost data.
			return nil, pipeline.Ordering(pipeline.StageChunker, pipeline.CodeArtifactMissing, err)
		}
		return nil, pipeline.Transient(pipeline.StageChunker, pipeline.CodeStoreError, err)
	}

	spans := chunker.Split(result.Pages, s.cfg)

	now := time.Now().UTC()
	chunks := make([]*entity.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = &entity.Chunk{
			ChunkId:       chunker.ChunkId(evt.DocId, span.PageStart, span.PageEnd, span.Sequence, span.Text),
			DocId:         evt.DocId,
			PageStart:     span.PageStart,
			PageEnd:       span.PageEnd,
			SequenceIndex: span.Sequence,
			ChunkText:     span.Text,
			Metadata: map[string]interface{}{
				"provider": doc.Provider,
				"bucket":   doc.Bucket,
				"key":      doc.Key,
				"merged":   span.Merged,
			},
			CreatedAt: now,
		}
	}

	if err := s.chunkRepo.UpsertBulk(ctx, chunks); err != nil {
		return nil, pipeline.Transient(pipeline.StageChunker, pipeline.CodeStoreError, err)
	}

	doc.ChunkCount = len(chunks)
	doc.Advance(pipeline.StatusChunked, time.Now().UTC())
	if err := s.docRepo.Upsert(ctx, doc); err != nil {
		return nil, pipeline.Transient(pipeline.StageChunker, pipeline.CodeStoreError, err)
	}

	next := *evt
	next.ChunkCount = len(chunks)
	return &StageResult{Next: &next}, nil
}
