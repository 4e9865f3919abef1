package contract

import (
	"context"

	"github.com/google/uuid"

	"groupware-ai-be/internal/model"
)

type ProvDocumentRepository interface {
	Create(ctx context.Context, doc *model.ProvDocument) error
	FindById(ctx context.Context, id uuid.UUID) (*model.ProvDocument, error)
	MarkEmbedded(ctx context.Context, id uuid.UUID, chunkCount int) error
	DeleteByProv(ctx context.Context, comId string, provNo int64) error
}
