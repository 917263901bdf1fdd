package contract

import (
	"context"

	"docstream-be/internal/entity"
)

// ListQuery narrows and pages a documents listing. An empty Status means
// all statuses.
type ListQuery struct {
	Status string
	Limit  int
	Offset int
}

// DocumentRepository persists Document records keyed by doc_id. All writes
// are upserts by design; an insert that could duplicate a doc_id must not
// exist on this interface.
type DocumentRepository interface {
	// Upsert writes the document, replacing an existing record with the same
	// doc_id. Repeated application with the same input is a no-op.
	Upsert(ctx context.Context, doc *entity.Document) error

	// FindByDocId returns the document or (nil, nil) when absent.
	FindByDocId(ctx context.Context, docId string) (*entity.Document, error)

	// List returns documents newest-first, optionally narrowed to one
	// status, paged by Limit/Offset.
	List(ctx context.Context, q ListQuery) ([]*entity.Document, error)

	// Count counts documents, narrowed the same way a List with the same
	// status would be.
	Count(ctx context.Context, status string) (int64, error)
}
