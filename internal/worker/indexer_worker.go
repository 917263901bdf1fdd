package worker

import (
	"context"
	"fmt"
	"time"

	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"
)

// IndexerStage is the thin final stage: it confirms every chunk's vector is
// durable and visible, then flips the document to INDEXED, which is what
// makes the chunks searchable. It never flips early: the embedded-chunk count
// must reach the chunk count recorded at CHUNKED time.
type IndexerStage struct {
	docRepo   contract.DocumentRepository
	chunkRepo contract.ChunkRepository
	version   string
}

func NewIndexerStage(docRepo contract.DocumentRepository, chunkRepo contract.ChunkRepository, version string) *IndexerStage {
	return &IndexerStage{docRepo: docRepo, chunkRepo: chunkRepo, version: version}
}

func (s *IndexerStage) Name() string     { return pipeline.StageIndexer }
func (s *IndexerStage) InTopic() string  { return events.TopicEmbedded }
func (s *IndexerStage) OutTopic() string { return events.TopicIndexed }

func (s *IndexerStage) Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error) {
	doc, err := loadDocument(ctx, s.docRepo, pipeline.StageIndexer, evt.DocId)
	if err != nil {
		return nil, err
	}

	if pipeline.AtOrPast(doc.Status, pipeline.StatusIndexed) {
		return &StageResult{Next: evt, Skipped: true}, nil
	}

	embedded, err := s.chunkRepo.CountEmbedded(ctx, evt.DocId, s.version)
	if err != nil {
		return nil, pipeline.Transient(pipeline.StageIndexer, pipeline.CodeStoreError, err)
	}
	if embedded < int64(doc.ChunkCount) {
		// The embedder's writes have not all landed yet; redelivery retries
		// until they are visible.
		return nil, pipeline.Transient(pipeline.StageIndexer, pipeline.CodeIndexIncomplete,
			fmt.Errorf("%d of %d chunks embedded for version %s", embedded, doc.ChunkCount, s.version))
	}

	doc.Advance(pipeline.StatusIndexed, time.Now().UTC())
	if err := s.docRepo.Upsert(ctx, doc); err != nil {
		return nil, pipeline.Transient(pipeline.StageIndexer, pipeline.CodeStoreError, err)
	}

	return &StageResult{Next: evt}, nil
}
