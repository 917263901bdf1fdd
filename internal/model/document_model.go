package model

import (
	"time"

	"gorm.io/datatypes"
)

type Document struct {
	DocId         string         `gorm:"type:varchar(64);primaryKey"`
	Provider      string         `gorm:"type:varchar(16);not null"`
	Bucket        string         `gorm:"type:varchar(255);not null"`
	Key           string         `gorm:"type:varchar(1024);not null"`
	SourceVersion string         `gorm:"type:varchar(255)"`
	Status        string         `gorm:"type:varchar(16);not null;index"`
	StatusHistory datatypes.JSON `gorm:"type:jsonb"`
	ContentHash   string         `gorm:"type:varchar(64);index"`
	PageCount     int            `gorm:"default:0"`
	ChunkCount    int            `gorm:"default:0"`
	IngestTs      time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
