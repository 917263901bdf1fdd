package pipeline

import (
	"errors"
	"fmt"
)

// Kind is the retry category of a pipeline failure.
type Kind string

const (
	// KindTransient covers network errors and timeouts against any
	// collaborator or the store. Retried with bounded backoff, then escalated.
	KindTransient Kind = "TransientInfra"
	// KindPermanent covers malformed input, unsupported content and
	// configuration mismatches. Escalated immediately, no retry.
	KindPermanent Kind = "PermanentInput"
	// KindOrdering flags a downstream stage receiving an event for an unknown
	// doc_id. It indicates a bus or store consistency issue rather than a
	// document defect, so it is reported distinctly.
	KindOrdering Kind = "OrderingAnomaly"
)

// Error codes carried on error events. The code identifies the concrete
// failure; Kind determines the retry policy.
const (
	CodeObjectNotFound       = "ObjectNotFound"
	CodeObjectStoreError     = "ObjectStoreError"
	CodeOcrServiceError      = "OcrServiceError"
	CodeOcrUnsupportedInput  = "OcrUnsupportedInput"
	CodeEmbeddingDimMismatch = "EmbeddingDimMismatch"
	CodeEmbeddingServiceErr  = "EmbeddingServiceError"
	CodeDocumentMissing      = "DocumentMissing"
	CodeArtifactMissing      = "ArtifactMissing"
	CodeStoreError           = "StoreError"
	CodeIndexIncomplete      = "IndexIncomplete"
	CodeBadEvent             = "BadEvent"
)

// Error is a classified pipeline failure tied to the stage that raised it.
type Error struct {
	Stage string
	Kind  Kind
	Code  string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (%s)", e.Stage, e.Code, e.Kind)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Stage, e.Code, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable infrastructure failure.
func Transient(stage, code string, err error) *Error {
	return &Error{Stage: stage, Kind: KindTransient, Code: code, Err: err}
}

// Permanent wraps err as a non-retryable input failure.
func Permanent(stage, code string, err error) *Error {
	return &Error{Stage: stage, Kind: KindPermanent, Code: code, Err: err}
}

// Ordering wraps err as an event/store consistency anomaly.
func Ordering(stage, code string, err error) *Error {
	return &Error{Stage: stage, Kind: KindOrdering, Code: code, Err: err}
}

// Classify returns the Kind of err. Unclassified errors are treated as
// transient so an unexpected failure is redelivered rather than swallowed.
func Classify(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}

// CodeOf returns the error code of err, or StoreError for unclassified ones.
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeStoreError
}
