package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Chunk struct {
	ChunkId       string            `gorm:"type:varchar(64);primaryKey"`
	DocId         string            `gorm:"type:varchar(64);not null;index"`
	PageStart     int               `gorm:"not null"`
	PageEnd       int               `gorm:"not null"`
	SequenceIndex int               `gorm:"not null;index"`
	ChunkText     string            `gorm:"type:text"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`

	// Nil until the embedder stage writes the vector. The column dimension
	// is fixed at migration time and must equal EMBEDDING_DIM: changing the
	// env var alone leaves a column the embedder cannot write. Keep this tag,
	// EMBEDDING_DIM and the HNSW index in cmd/migrate in sync.
	Embedding        *pgvector.Vector `gorm:"type:vector(768)"`
	EmbeddingModel   string           `gorm:"type:varchar(128)"`
	EmbeddingDim     int              `gorm:"default:0"`
	EmbeddingVersion string           `gorm:"type:varchar(64);index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}
