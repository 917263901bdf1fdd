package entity

import "time"

// Chunk is one retrieval-sized span of a document's extracted text. ChunkId
// is a deterministic function of (doc_id, page span, sequence, text hash), so
// re-chunking an unchanged document overwrites instead of duplicating.
// Embedding fields are nil/empty until the embedder stage runs; whenever
// Embedding is set, the three provenance fields are set with it.
type Chunk struct {
	ChunkId       string
	DocId         string
	PageStart     int
	PageEnd       int
	SequenceIndex int
	ChunkText     string
	Metadata      map[string]interface{}

	Embedding        []float32
	EmbeddingModel   string
	EmbeddingDim     int
	EmbeddingVersion string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Embedded reports whether this chunk carries a vector for the given
// embedding version.
func (c *Chunk) Embedded(version string) bool {
	return len(c.Embedding) > 0 && c.EmbeddingVersion == version
}
