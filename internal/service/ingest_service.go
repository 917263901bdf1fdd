package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docstream-be/internal/dto"
	"docstream-be/internal/entity"
	"docstream-be/internal/pkg/logger"
	"docstream-be/internal/pkg/serverutils"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/bus"
	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"

	"github.com/google/uuid"
)

type IIngestService interface {
	// Ingest publishes an arrival event for an object reference. The ingest
	// worker validates and admits it; this call only enqueues.
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)

	// Reprocess re-emits an arrival event for a known document. Safe at any
	// time: every stage short-circuits on already-completed work, so this
	// unstalls a stuck pipeline without duplicating records.
	Reprocess(ctx context.Context, docId string) (*dto.IngestResponse, error)

	GetDocument(ctx context.Context, docId string) (*dto.DocumentResponse, error)

	// ListDocuments pages through documents newest-first, optionally
	// narrowed to one pipeline status.
	ListDocuments(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.DocumentListResponse, error)
}

type ingestService struct {
	eventBus  bus.Bus
	docRepo   contract.DocumentRepository
	sysLogger logger.ILogger
}

func NewIngestService(eventBus bus.Bus, docRepo contract.DocumentRepository, sysLogger logger.ILogger) IIngestService {
	return &ingestService{
		eventBus:  eventBus,
		docRepo:   docRepo,
		sysLogger: sysLogger,
	}
}

func (s *ingestService) publishArrival(ctx context.Context, evt events.PipelineEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal arrival event: %w", err)
	}
	return s.eventBus.Publish(ctx, events.TopicArrivals, evt.DocId, payload)
}

func (s *ingestService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	ref := events.SourceRef{
		Provider: req.Provider,
		Bucket:   req.Bucket,
		Key:      req.Key,
		Version:  req.Version,
	}
	docId := ref.DocId()

	evt := events.PipelineEvent{
		DocId:    docId,
		Source:   ref,
		IngestTs: time.Now().UTC(),
		TraceId:  uuid.NewString(),
		Attempt:  0,
	}

	if err := s.publishArrival(ctx, evt); err != nil {
		s.sysLogger.Error("ingest", "Failed to publish arrival event", map[string]interface{}{
			"doc_id": docId,
			"source": ref.URI(),
			"error":  err.Error(),
		})
		return nil, serverutils.ServiceUnavailableError("Event bus unavailable")
	}

	s.sysLogger.Info("ingest", "Arrival event published", map[string]interface{}{
		"doc_id": docId,
		"source": ref.URI(),
	})

	return &dto.IngestResponse{DocId: docId}, nil
}

func (s *ingestService) Reprocess(ctx context.Context, docId string) (*dto.IngestResponse, error) {
	doc, err := s.docRepo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}
	if doc == nil {
		return nil, serverutils.NotFoundError("Document not found")
	}

	evt := events.PipelineEvent{
		DocId:    doc.DocId,
		Source:   doc.SourceRef(),
		IngestTs: doc.IngestTs,
		TraceId:  uuid.NewString(),
		Attempt:  0,
	}

	if err := s.publishArrival(ctx, evt); err != nil {
		return nil, serverutils.ServiceUnavailableError("Event bus unavailable")
	}

	s.sysLogger.Info("ingest", "Reprocess event published", map[string]interface{}{
		"doc_id": docId,
		"status": string(doc.Status),
	})

	return &dto.IngestResponse{DocId: doc.DocId}, nil
}

func (s *ingestService) GetDocument(ctx context.Context, docId string) (*dto.DocumentResponse, error) {
	doc, err := s.docRepo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}
	if doc == nil {
		return nil, serverutils.NotFoundError("Document not found")
	}
	return mapDocument(doc), nil
}

const (
	defaultListLimit = 20
)

func (s *ingestService) ListDocuments(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.DocumentListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultListLimit
	}

	q := contract.ListQuery{
		Status: req.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	docs, err := s.docRepo.List(ctx, q)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}
	total, err := s.docRepo.Count(ctx, req.Status)
	if err != nil {
		return nil, serverutils.ServiceUnavailableError("Document store unavailable")
	}

	responses := make([]*dto.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = mapDocument(doc)
	}

	return &dto.DocumentListResponse{
		Documents: responses,
		Total:     total,
		Page:      page,
		Limit:     limit,
	}, nil
}

func mapDocument(doc *entity.Document) *dto.DocumentResponse {
	history := make([]dto.StatusTransitionResponse, len(doc.StatusHistory))
	for i, tr := range doc.StatusHistory {
		history[i] = dto.StatusTransitionResponse{
			Status: string(tr.Status),
			At:     tr.At,
		}
	}
	return &dto.DocumentResponse{
		DocId:         doc.DocId,
		Provider:      doc.Provider,
		Bucket:        doc.Bucket,
		Key:           doc.Key,
		SourceVersion: doc.SourceVersion,
		Status:        string(doc.Status),
		Indexed:       doc.Status == pipeline.StatusIndexed,
		StatusHistory: history,
		ContentHash:   doc.ContentHash,
		PageCount:     doc.PageCount,
		ChunkCount:    doc.ChunkCount,
		IngestTs:      doc.IngestTs,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
