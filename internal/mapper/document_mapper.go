package mapper

import (
	"encoding/json"
	"time"

	"docstream-be/internal/entity"
	"docstream-be/internal/model"
	"docstream-be/pkg/pipeline"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var history []entity.StatusTransition
	if len(d.StatusHistory) > 0 {
		// A malformed history column is not worth failing a read over; the
		// scalar status column stays authoritative.
		_ = json.Unmarshal(d.StatusHistory, &history)
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		DocId:         d.DocId,
		Provider:      d.Provider,
		Bucket:        d.Bucket,
		Key:           d.Key,
		SourceVersion: d.SourceVersion,
		Status:        pipeline.Status(d.Status),
		StatusHistory: history,
		ContentHash:   d.ContentHash,
		PageCount:     d.PageCount,
		ChunkCount:    d.ChunkCount,
		IngestTs:      d.IngestTs,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	history, _ := json.Marshal(d.StatusHistory)

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		DocId:         d.DocId,
		Provider:      d.Provider,
		Bucket:        d.Bucket,
		Key:           d.Key,
		SourceVersion: d.SourceVersion,
		Status:        string(d.Status),
		StatusHistory: history,
		ContentHash:   d.ContentHash,
		PageCount:     d.PageCount,
		ChunkCount:    d.ChunkCount,
		IngestTs:      d.IngestTs,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}
