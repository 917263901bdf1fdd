package dto

import "time"

type QueryRequest struct {
	Text    string            `json:"text" validate:"required"`
	Filters map[string]string `json:"filters"`
	K       int               `json:"k" validate:"omitempty,min=1,max=100"`
}

type QueryResult struct {
	ChunkId   string                 `json:"chunk_id"`
	DocId     string                 `json:"doc_id"`
	ChunkText string                 `json:"chunk_text"`
	Score     float64                `json:"score"`
	PageStart int                    `json:"page_start"`
	PageEnd   int                    `json:"page_end"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type QueryResponse struct {
	Results []QueryResult `json:"results"`
}

type ChunkResponse struct {
	ChunkId          string                 `json:"chunk_id"`
	DocId            string                 `json:"doc_id"`
	PageStart        int                    `json:"page_start"`
	PageEnd          int                    `json:"page_end"`
	SequenceIndex    int                    `json:"sequence_index"`
	ChunkText        string                 `json:"chunk_text"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	HasEmbedding     bool                   `json:"has_embedding"`
	EmbeddingModel   string                 `json:"embedding_model,omitempty"`
	EmbeddingDim     int                    `json:"embedding_dim,omitempty"`
	EmbeddingVersion string                 `json:"embedding_version,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ChunksByDocResponse lists a document's chunks in sequence order. Unlike
// text queries this works for in-flight documents too; Indexed tells the
// caller whether the same chunks are visible to search yet.
type ChunksByDocResponse struct {
	DocId   string          `json:"doc_id"`
	Status  string          `json:"status"`
	Indexed bool            `json:"indexed"`
	Chunks  []ChunkResponse `json:"chunks"`
}
