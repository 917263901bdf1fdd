package specification

import "gorm.io/gorm"

// MetadataEquals filters chunks on a JSONB metadata field by equality.
type MetadataEquals struct {
	Field string
	Value string
}

func (s MetadataEquals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata ->> ? = ?", s.Field, s.Value)
}

// WithEmbeddingVersion filters chunks carrying a vector for a specific
// embedding version.
type WithEmbeddingVersion struct {
	Version string
}

func (s WithEmbeddingVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL").Where("embedding_version = ?", s.Version)
}

// OrderBySequence returns chunks in page/sequence order.
type OrderBySequence struct{}

func (s OrderBySequence) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_index ASC")
}
