package runstore

import (
	"context"
	"time"
)

// Status of an accepted chatbot run.
const (
	StatusQueued  = "QUEUED"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

// Run is the lightweight status record tracked per messageId. The durable
// audit trail lives in chat_runs; this store only answers "where is my run".
type Run struct {
	MessageId    string    `json:"message_id"`
	ComId        string    `json:"com_id"`
	EmpId        string    `json:"emp_id"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const defaultTTL = 24 * time.Hour

type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, messageId string) (*Run, error)
	SetStatus(ctx context.Context, messageId string, status string, errorMessage string) error
}
