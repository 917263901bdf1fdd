package worker

import (
	"context"
	"encoding/json"
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/pkg/logger"
	"docstream-be/internal/repository/contract"
	"docstream-be/pkg/bus"
	"docstream-be/pkg/events"
	"docstream-be/pkg/metrics"
	"docstream-be/pkg/pipeline"
)

// StageResult is what a stage hands back to the runner on success.
type StageResult struct {
	// Next is the event to publish on the stage's output topic. Nil means
	// nothing to publish (only the terminal stage may do this).
	Next *events.PipelineEvent
	// Skipped marks an idempotency short-circuit: the stored status already
	// covered this stage, so no work was done and Next is a re-emission.
	Skipped bool
}

// Stage is one pipeline transformation. Handle must be idempotent: the bus is
// at-least-once, so the same event may arrive any number of times.
type Stage interface {
	Name() string
	InTopic() string
	OutTopic() string
	Handle(ctx context.Context, evt *events.PipelineEvent) (*StageResult, error)
}

// Runner owns the consume/retry/escalate loop shared by every stage. Stages
// only classify their failures; the runner decides redelivery, backoff, error
// events and the ERROR status write.
type Runner struct {
	stage       Stage
	eventBus    bus.Bus
	docRepo     contract.DocumentRepository
	workerMeter *metrics.WorkerMetrics
	sysLogger   logger.ILogger
	group       string
	partitions  []int
	maxAttempts int
	backoff     pipeline.Backoff
}

func NewRunner(
	stage Stage,
	eventBus bus.Bus,
	docRepo contract.DocumentRepository,
	workerMeter *metrics.WorkerMetrics,
	sysLogger logger.ILogger,
	partitions []int,
	maxAttempts int,
	backoff pipeline.Backoff,
) *Runner {
	return &Runner{
		stage:       stage,
		eventBus:    eventBus,
		docRepo:     docRepo,
		workerMeter: workerMeter,
		sysLogger:   sysLogger,
		group:       "docstream-" + stage.Name(),
		partitions:  partitions,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Run subscribes the stage to its input topic and blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.eventBus.Subscribe(ctx, r.stage.InTopic(), r.group, r.partitions, r.handle); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (r *Runner) handle(ctx context.Context, payload []byte) error {
	start := time.Now()
	name := r.stage.Name()

	var evt events.PipelineEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		// Undecodable payloads are acked, not redelivered: redelivery cannot
		// fix them and would wedge the partition.
		r.sysLogger.Error(name, "Dropping undecodable event", map[string]interface{}{
			"error": err.Error(),
		})
		r.workerMeter.Failures.WithLabelValues(name, string(pipeline.KindPermanent)).Inc()
		r.publishError(ctx, &evt, pipeline.Permanent(name, pipeline.CodeBadEvent, err))
		return nil
	}

	var result *StageResult
	attempts := 0
	err := pipeline.Retry(ctx, r.maxAttempts, r.backoff, func() error {
		if attempts > 0 {
			r.workerMeter.Retries.WithLabelValues(name).Inc()
		}
		attempts++
		var handleErr error
		result, handleErr = r.stage.Handle(ctx, &evt)
		return handleErr
	})
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown mid-event: leave it unacked for redelivery.
			return err
		}
		return r.escalate(ctx, &evt, err, start)
	}

	if result != nil && result.Skipped {
		r.workerMeter.EventsSkipped.WithLabelValues(name).Inc()
		r.sysLogger.Info(name, "Short-circuited already-completed stage", map[string]interface{}{
			"doc_id": evt.DocId,
		})
	}

	if result != nil && result.Next != nil {
		if err := r.publish(ctx, r.stage.OutTopic(), result.Next); err != nil {
			// Publish failure leaves the event unacked; the whole handler
			// reruns on redelivery, which the idempotency check absorbs.
			r.sysLogger.Error(name, "Failed to publish downstream event", map[string]interface{}{
				"doc_id": evt.DocId,
				"topic":  r.stage.OutTopic(),
				"error":  err.Error(),
			})
			return err
		}
	}

	r.workerMeter.EventsProcessed.WithLabelValues(name).Inc()
	r.workerMeter.ObserveStage(name, start)
	return nil
}

// escalate turns an exhausted or non-retryable failure into an error event
// plus, where the document exists, an ERROR status write. The event is then
// acked: escalation is the terminal handling, redelivery would only repeat it.
func (r *Runner) escalate(ctx context.Context, evt *events.PipelineEvent, err error, start time.Time) error {
	name := r.stage.Name()
	kind := pipeline.Classify(err)
	code := pipeline.CodeOf(err)

	r.workerMeter.Failures.WithLabelValues(name, string(kind)).Inc()
	r.workerMeter.ObserveStage(name, start)
	r.sysLogger.Error(name, "Escalating failed event", map[string]interface{}{
		"doc_id":  evt.DocId,
		"kind":    string(kind),
		"code":    code,
		"attempt": evt.Attempt,
		"error":   err.Error(),
	})

	// A dimension mismatch is a configuration defect, not a document defect:
	// the document keeps its status so a reprocess after the config fix
	// resumes cleanly. Ordering anomalies have no document to mark.
	if kind != pipeline.KindOrdering && code != pipeline.CodeEmbeddingDimMismatch {
		r.markError(ctx, evt.DocId)
	}

	r.publishError(ctx, evt, err)
	return nil
}

func (r *Runner) markError(ctx context.Context, docId string) {
	doc, err := r.docRepo.FindByDocId(ctx, docId)
	if err != nil || doc == nil {
		return
	}
	if !pipeline.CanAdvance(doc.Status, pipeline.StatusError) {
		return
	}
	doc.Advance(pipeline.StatusError, time.Now().UTC())
	if err := r.docRepo.Upsert(ctx, doc); err != nil {
		r.sysLogger.Error(r.stage.Name(), "Failed to record ERROR status", map[string]interface{}{
			"doc_id": docId,
			"error":  err.Error(),
		})
	}
}

func (r *Runner) publish(ctx context.Context, topic string, evt *events.PipelineEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.eventBus.Publish(ctx, topic, evt.DocId, payload)
}

func (r *Runner) publishError(ctx context.Context, evt *events.PipelineEvent, cause error) {
	errEvt := events.ErrorEvent{
		PipelineEvent: *evt,
		FailedStage:   r.stage.Name(),
		ErrorKind:     string(pipeline.Classify(cause)),
		ErrorMessage:  cause.Error(),
	}
	errEvt.Attempt = evt.Attempt + 1

	payload, err := json.Marshal(errEvt)
	if err != nil {
		return
	}
	if err := r.eventBus.Publish(ctx, events.TopicErrors, evt.DocId, payload); err != nil {
		r.sysLogger.Error(r.stage.Name(), "Failed to publish error event", map[string]interface{}{
			"doc_id": evt.DocId,
			"error":  err.Error(),
		})
	}
}

// loadDocument fetches the document for a downstream stage. Absence is an
// ordering anomaly there, never an invitation to create the record.
func loadDocument(ctx context.Context, repo contract.DocumentRepository, stage, docId string) (*entity.Document, error) {
	doc, err := repo.FindByDocId(ctx, docId)
	if err != nil {
		return nil, pipeline.Transient(stage, pipeline.CodeStoreError, err)
	}
	if doc == nil {
		return nil, pipeline.Ordering(stage, pipeline.CodeDocumentMissing, nil)
	}
	return doc, nil
}
