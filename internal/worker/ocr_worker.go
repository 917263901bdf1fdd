package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/artifact"
	"docstream-be/pkg/events"
	"docstream-be/pkg/objectstore"
	"docstream-be/pkg/ocr"
	"docstream-be/pkg/pipeline"
)

// OcrStage reads the PDF bytes, runs them through the OCR collaborator and
// stores the raw result as a side artifact keyed by doc_id.
type OcrStage struct {
	store     *objectstore.Multi
	ocrClient ocr.Client
	artifacts *artifact.Store
	docRepo   contract.DocumentRepository
}

func NewOcrStage(
	store *objectstore.Multi,
	ocrClient ocr.Client,
	artifacts *artifact.Store,
	docRepo contract.DocumentRepository,
) *OcrStage {
	return &OcrStage{
		store:     store,
		ocrClient: ocrClient,
		artifacts: artifacts,
		docRepo:   docRepo,
	}
}

func (s *OcrStage) Name() string     { return pipeline.StageOcr }
func (s *OcrStage) InTopic() string  { return events.TopicIngest }
func (s *OcrStage) OutTopic() string { return events.TopicOcrDone }

func (s *OcrStage) Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error) {
	doc, err := loadDocument(ctx, s.docRepo, pipeline.StageOcr, evt.DocId)
	if err != nil {
		return nil, err
	}

	if pipeline.AtOrPast(doc.Status, pipeline.StatusOcrDone) {
		return &StageResult{Next: evt, Skipped: true}, nil
	}

	pdf, err := s.store.Read(ctx, evt.Source)
	if err != nil {
		var notFound *objectstore.ErrNotFound
		if errors.As(err, &notFound) {
			// The object was there at ingest time; treat disappearance as
			// permanent, the arrival producer must re-drive it.
			return nil, pipeline.Permanent(pipeline.StageOcr, pipeline.CodeObjectNotFound, err)
		}
		return nil, pipeline.Transient(pipeline.StageOcr, pipeline.CodeObjectStoreError, err)
	}

	result, err := s.ocrClient.Process(ctx, pdf)
	if err != nil {
		var svcErr *ocr.ServiceError
		if errors.As(err, &svcErr) && !svcErr.Retryable {
			return nil, pipeline.Permanent(pipeline.StageOcr, pipeline.CodeOcrUnsupportedInput, err)
		}
		return nil, pipeline.Transient(pipeline.StageOcr, pipeline.CodeOcrServiceError, err)
	}

	if err := s.artifacts.Put(evt.DocId, result); err != nil {
		return nil, pipeline.Transient(pipeline.StageOcr, pipeline.CodeStoreError, err)
	}

	sum := sha256.Sum256(pdf)
	doc.ContentHash = hex.EncodeToString(sum[:])
	doc.PageCount = len(result.Pages)
	doc.Advance(pipeline.StatusOcrDone, time.Now().UTC())
	if err := s.docRepo.Upsert(ctx, doc); err != nil {
		return nil, pipeline.Transient(pipeline.StageOcr, pipeline.CodeStoreError, err)
	}

	return &StageResult{Next: evt}, nil
}
