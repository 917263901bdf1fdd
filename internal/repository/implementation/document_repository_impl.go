package implementation

import (
	"context"
	"errors"

	"docstream-be/internal/entity"
	"docstream-be/internal/mapper"
	"docstream-be/internal/model"
	"docstream-be/internal/repository/contract"
	"docstream-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

// Upsert writes by doc_id with ON CONFLICT DO UPDATE. This is the only write
// path for documents; there is no insert that could duplicate a doc_id under
// redelivery.
func (r *DocumentRepositoryImpl) Upsert(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "status_history", "content_hash",
			"page_count", "chunk_count", "ingest_ts", "updated_at",
		}),
	}).Create(m).Error
}

func (r *DocumentRepositoryImpl) FindByDocId(ctx context.Context, docId string) (*entity.Document, error) {
	var m model.Document
	err := r.db.WithContext(ctx).Where("doc_id = ?", docId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, q contract.ListQuery) ([]*entity.Document, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "ingest_ts", Desc: true},
		specification.Pagination{Limit: q.Limit, Offset: q.Offset},
	}
	if q.Status != "" {
		specs = append(specs, specification.ByStatus{Status: q.Status})
	}

	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	docs := make([]*entity.Document, len(models))
	for i, m := range models {
		docs[i] = r.mapper.ToEntity(m)
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Document{})
	if status != "" {
		query = r.applySpecifications(query, specification.ByStatus{Status: status})
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
