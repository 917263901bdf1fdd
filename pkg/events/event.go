package events

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Topic names for the pipeline log channels. Each stage consumes exactly one
// topic and emits on the next one (or on TopicErrors).
const (
	TopicArrivals = "pdf-arrivals"
	TopicIngest   = "pdf-ingest"
	TopicOcrDone  = "pdf-ocr-done"
	TopicChunked  = "pdf-chunked"
	TopicEmbedded = "pdf-embedded"
	TopicIndexed  = "pdf-indexed"
	TopicErrors   = "pdf-errors"
)

// SourceRef locates the original object in its object store. The pipeline
// treats it as an opaque lookup key beyond deriving the doc_id from it.
type SourceRef struct {
	Provider string `json:"provider"` // "gcs", "s3" or "minio"
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Version  string `json:"version,omitempty"`
}

// DocId derives the stable document identifier from the source location.
// Re-ingesting the same object always yields the same id, which is what makes
// document writes idempotent upserts. The hash input is NUL-separated so that
// ("ab","c") and ("a","bc") cannot collide.
func (s SourceRef) DocId() string {
	h := sha256.New()
	h.Write([]byte(s.Provider))
	h.Write([]byte{0})
	h.Write([]byte(s.Bucket))
	h.Write([]byte{0})
	h.Write([]byte(s.Key))
	if s.Version != "" {
		h.Write([]byte{0})
		h.Write([]byte(s.Version))
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// URI renders the reference in provider://bucket/key form for logs.
func (s SourceRef) URI() string {
	return s.Provider + "://" + s.Bucket + "/" + s.Key
}

// PipelineEvent is the message carried on every stage topic. Stage-specific
// fields are optional and zero for stages that do not set them.
type PipelineEvent struct {
	DocId    string    `json:"doc_id"`
	Source   SourceRef `json:"source"`
	IngestTs time.Time `json:"ingest_ts"`
	TraceId  string    `json:"trace_id,omitempty"`
	Attempt  int       `json:"attempt"`

	// Set by the chunker so downstream stages know the full chunk set size.
	ChunkCount int `json:"chunk_count,omitempty"`
}

// ErrorEvent is the message carried on the error topic. It keeps the original
// reference and attempt count so processing can be re-driven manually.
type ErrorEvent struct {
	PipelineEvent
	FailedStage  string `json:"failed_stage"`
	ErrorKind    string `json:"error_kind"`
	ErrorMessage string `json:"error_message"`
}
