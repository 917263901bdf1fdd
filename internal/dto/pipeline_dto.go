package dto

import "time"

type IngestRequest struct {
	Provider string `json:"provider" validate:"required,oneof=gcs s3 minio"`
	Bucket   string `json:"bucket" validate:"required"`
	Key      string `json:"key" validate:"required"`
	Version  string `json:"version"`
}

type IngestResponse struct {
	DocId string `json:"doc_id"`
}

type ListDocumentsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=RECEIVED OCR_DONE CHUNKED EMBEDDED INDEXED ERROR"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type DocumentListResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Limit     int                 `json:"limit"`
}

type StatusTransitionResponse struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type DocumentResponse struct {
	DocId         string                     `json:"doc_id"`
	Provider      string                     `json:"provider"`
	Bucket        string                     `json:"bucket"`
	Key           string                     `json:"key"`
	SourceVersion string                     `json:"source_version,omitempty"`
	Status        string                     `json:"status"`
	// Indexed is the explicit searchability indicator: false means the
	// document is still in flight (or errored) and its chunks are not yet
	// visible to text queries.
	Indexed       bool                       `json:"indexed"`
	StatusHistory []StatusTransitionResponse `json:"status_history"`
	ContentHash   string                     `json:"content_hash,omitempty"`
	PageCount     int                        `json:"page_count"`
	ChunkCount    int                        `json:"chunk_count"`
	IngestTs      time.Time                  `json:"ingest_ts"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     *time.Time                 `json:"updated_at,omitempty"`
}
