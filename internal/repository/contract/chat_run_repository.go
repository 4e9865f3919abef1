package contract

import (
	"context"

	"groupware-ai-be/internal/model"
)

type ChatRunRepository interface {
	Create(ctx context.Context, run *model.ChatRun) error
	Finish(ctx context.Context, run *model.ChatRun) error
	FindByMessageId(ctx context.Context, messageId string) (*model.ChatRun, error)
}
