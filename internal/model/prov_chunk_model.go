package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ProvChunk is one embedded slice of a provision document, scoped by tenant.
type ProvChunk struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ComId        string          `gorm:"index:idx_prov_chunks_tenant;not null"`
	ProvNo       int64           `gorm:"index:idx_prov_chunks_tenant;not null"`
	ObjectKey    string          `gorm:"not null"`
	OriginalName string          `gorm:"not null"`
	ChunkIndex   int             `gorm:"not null"`
	Content      string          `gorm:"type:text;not null"`
	Embedding    pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt    time.Time
}

func (ProvChunk) TableName() string {
	return "prov_chunks"
}
