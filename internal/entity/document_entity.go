package entity

import (
	"time"

	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"
)

// StatusTransition is one entry of a document's append-only status history.
type StatusTransition struct {
	Status pipeline.Status `json:"status"`
	At     time.Time       `json:"at"`
}

// Document is the single pipeline record for one ingested PDF, keyed by the
// deterministic doc_id. There is never more than one Document per doc_id;
// every write is an upsert.
type Document struct {
	DocId          string
	Provider       string
	Bucket         string
	Key            string
	SourceVersion  string
	Status         pipeline.Status
	StatusHistory  []StatusTransition
	ContentHash    string
	PageCount      int
	ChunkCount     int
	IngestTs       time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// SourceRef reassembles the object store reference.
func (d *Document) SourceRef() events.SourceRef {
	return events.SourceRef{
		Provider: d.Provider,
		Bucket:   d.Bucket,
		Key:      d.Key,
		Version:  d.SourceVersion,
	}
}

// Advance appends a status transition and moves the scalar status forward.
func (d *Document) Advance(status pipeline.Status, at time.Time) {
	d.Status = status
	d.StatusHistory = append(d.StatusHistory, StatusTransition{Status: status, At: at})
}
