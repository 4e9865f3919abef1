package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatRun is the audit record of one chatbot run: what was planned, what
// the tools returned, and how the run terminated.
type ChatRun struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	MessageId     string         `gorm:"uniqueIndex;not null"`
	ComId         string         `gorm:"index;not null"`
	EmpId         string         `gorm:"not null"`
	Question      string         `gorm:"type:text;not null"`
	Plan          datatypes.JSON `gorm:"type:jsonb"`
	TaskSummaries datatypes.JSON `gorm:"type:jsonb"`
	Status        string         `gorm:"not null"`
	ErrorMessage  string         `gorm:"type:text"`
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

func (ChatRun) TableName() string {
	return "chat_runs"
}
