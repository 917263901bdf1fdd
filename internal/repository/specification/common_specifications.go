package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// ByDocId filters by the document's deterministic id.
type ByDocId struct {
	DocId string
}

func (s ByDocId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_id = ?", s.DocId)
}

// ByStatus filters documents by pipeline status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
