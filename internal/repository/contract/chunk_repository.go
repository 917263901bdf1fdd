package contract

import (
	"context"

	"docstream-be/internal/entity"
)

// ScoredChunk is a search hit with its similarity score.
type ScoredChunk struct {
	Chunk *entity.Chunk
	Score float64
}

// SearchQuery is a combined vector-similarity + metadata-filter query over
// chunks. Only chunks of INDEXED documents are visible to it; in-flight
// documents are reachable through FindByDocId instead.
type SearchQuery struct {
	Vector []float32
	K      int
	// Filters are equality filters on chunk metadata fields.
	Filters map[string]string
	// Metric is "cosine" (default) or "l2".
	Metric string
}

// ChunkRepository persists Chunk records keyed by their deterministic
// chunk_id.
type ChunkRepository interface {
	// UpsertBulk writes all chunks, replacing records with matching ids.
	UpsertBulk(ctx context.Context, chunks []*entity.Chunk) error

	// FindByDocId returns a document's chunks in sequence order, regardless
	// of the document's status.
	FindByDocId(ctx context.Context, docId string) ([]*entity.Chunk, error)

	// CountEmbedded counts the document's chunks carrying a vector for the
	// given embedding version. The indexer compares this against the
	// document's chunk count before flipping to INDEXED.
	CountEmbedded(ctx context.Context, docId string, version string) (int64, error)

	Search(ctx context.Context, q SearchQuery) ([]*ScoredChunk, error)
}
