package mapper

import (
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chunk{
		ChunkId:          c.ChunkId,
		DocId:            c.DocId,
		PageStart:        c.PageStart,
		PageEnd:          c.PageEnd,
		SequenceIndex:    c.SequenceIndex,
		ChunkText:        c.ChunkText,
		Metadata:         c.Metadata,
		Embedding:        embedding,
		EmbeddingModel:   c.EmbeddingModel,
		EmbeddingDim:     c.EmbeddingDim,
		EmbeddingVersion: c.EmbeddingVersion,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chunk{
		ChunkId:          c.ChunkId,
		DocId:            c.DocId,
		PageStart:        c.PageStart,
		PageEnd:          c.PageEnd,
		SequenceIndex:    c.SequenceIndex,
		ChunkText:        c.ChunkText,
		Metadata:         c.Metadata,
		Embedding:        embedding,
		EmbeddingModel:   c.EmbeddingModel,
		EmbeddingDim:     c.EmbeddingDim,
		EmbeddingVersion: c.EmbeddingVersion,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
