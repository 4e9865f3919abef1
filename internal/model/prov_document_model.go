package model

import (
	"time"

	"github.com/google/uuid"
)

// ProvDocument is the ingestion record for one provision document awaiting
// (or finished with) embedding.
type ProvDocument struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComId        string    `gorm:"index;not null"`
	ProvNo       int64     `gorm:"index;not null"`
	ObjectKey    string    `gorm:"not null"`
	OriginalName string    `gorm:"not null"`
	Content      string    `gorm:"type:text;not null"`
	ChunkCount   int       `gorm:"not null;default:0"`
	EmbeddedAt   *time.Time
	CreatedAt    time.Time
}

func (ProvDocument) TableName() string {
	return "prov_documents"
}
