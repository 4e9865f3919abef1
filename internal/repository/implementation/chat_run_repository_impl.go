package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/repository/contract"
)

type ChatRunRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRunRepository(db *gorm.DB) contract.ChatRunRepository {
	return &ChatRunRepositoryImpl{db: db}
}

func (r *ChatRunRepositoryImpl) Create(ctx context.Context, run *model.ChatRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ChatRunRepositoryImpl) Finish(ctx context.Context, run *model.ChatRun) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatRun{}).
		Where("message_id = ?", run.MessageId).
		Updates(map[string]interface{}{
			"plan":           run.Plan,
			"task_summaries": run.TaskSummaries,
			"status":         run.Status,
			"error_message":  run.ErrorMessage,
			"completed_at":   run.CompletedAt,
		}).Error
}

func (r *ChatRunRepositoryImpl) FindByMessageId(ctx context.Context, messageId string) (*model.ChatRun, error) {
	var run model.ChatRun
	if err := r.db.WithContext(ctx).First(&run, "message_id = ?", messageId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
