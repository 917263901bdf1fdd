package worker

import (
	"context"
	"errors"
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/events"
	"docstream-be/pkg/objectstore"
	"docstream-be/pkg/pipeline"
)

// IngestStage admits arrivals into the pipeline. It verifies the referenced
// object exists, creates the Document on first sight of a doc_id, and emits
// the first stage event. A validation failure never creates a Document.
type IngestStage struct {
	store   *objectstore.Multi
	docRepo contract.DocumentRepository
}

func NewIngestStage(store *objectstore.Multi, docRepo contract.DocumentRepository) *IngestStage {
	return &IngestStage{store: store, docRepo: docRepo}
}

func (s *IngestStage) Name() string     { return pipeline.StageIngest }
func (s *IngestStage) InTopic() string  { return events.TopicArrivals }
func (s *IngestStage) OutTopic() string { return events.TopicIngest }

func (s *IngestStage) Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error) {
	// Arrival producers may not compute the id; derive it here so the rest
	// of the pipeline can trust it.
	docId := evt.Source.DocId()

	exists, err := s.store.Exists(ctx, evt.Source)
	if err != nil {
		var notFound *objectstore.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, pipeline.Permanent(pipeline.StageIngest, pipeline.CodeObjectNotFound, err)
		}
		return nil, pipeline.Transient(pipeline.StageIngest, pipeline.CodeObjectStoreError, err)
	}
	if !exists {
		return nil, pipeline.Permanent(pipeline.StageIngest, pipeline.CodeObjectNotFound,
			errors.New("object does not exist: "+evt.Source.URI()))
	}

	doc, err := s.docRepo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, pipeline.Transient(pipeline.StageIngest, pipeline.CodeStoreError, err)
	}

	ingestTs := evt.IngestTs
	if ingestTs.IsZero() {
		ingestTs = time.Now().UTC()
	}

	skipped := false
	if doc == nil {
		doc = &entity.Document{
			DocId:         docId,
			Provider:      evt.Source.Provider,
			Bucket:        evt.Source.Bucket,
			Key:           evt.Source.Key,
			SourceVersion: evt.Source.Version,
			IngestTs:      ingestTs,
		}
		doc.Advance(pipeline.StatusReceived, time.Now().UTC())
		if err := s.docRepo.Upsert(ctx, doc); err != nil {
			return nil, pipeline.Transient(pipeline.StageIngest, pipeline.CodeStoreError, err)
		}
	} else {
		// Known document: re-validating and re-emitting is safe, and the
		// record itself is never mutated by a repeat ingest.
		skipped = true
	}

	next := *evt
	next.DocId = docId
	next.IngestTs = doc.IngestTs
	return &StageResult{Next: &next, Skipped: skipped}, nil
}
