package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/repository/contract"
)

type ProvDocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewProvDocumentRepository(db *gorm.DB) contract.ProvDocumentRepository {
	return &ProvDocumentRepositoryImpl{db: db}
}

func (r *ProvDocumentRepositoryImpl) Create(ctx context.Context, doc *model.ProvDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *ProvDocumentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*model.ProvDocument, error) {
	var doc model.ProvDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *ProvDocumentRepositoryImpl) MarkEmbedded(ctx context.Context, id uuid.UUID, chunkCount int) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.ProvDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"chunk_count": chunkCount,
			"embedded_at": &now,
		}).Error
}

func (r *ProvDocumentRepositoryImpl) DeleteByProv(ctx context.Context, comId string, provNo int64) error {
	return r.db.WithContext(ctx).
		Where("com_id = ? AND prov_no = ?", comId, provNo).
		Delete(&model.ProvDocument{}).Error
}
