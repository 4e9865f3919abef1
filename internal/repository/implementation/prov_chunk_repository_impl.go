package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/repository/contract"
)

type ProvChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewProvChunkRepository(db *gorm.DB) contract.ProvChunkRepository {
	return &ProvChunkRepositoryImpl{db: db}
}

func (r *ProvChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*model.ProvChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(chunks).Error
}

func (r *ProvChunkRepositoryImpl) DeleteByProv(ctx context.Context, comId string, provNo int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("com_id = ? AND prov_no = ?", comId, provNo).
		Delete(&model.ProvChunk{})
	return res.RowsAffected, res.Error
}

func (r *ProvChunkRepositoryImpl) SearchSimilar(ctx context.Context, comId string, embedding []float32, limit int) ([]*model.ProvChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	var chunks []*model.ProvChunk

	// pgvector cosine distance; tenant filter is mandatory, never search
	// across companies.
	err := r.db.WithContext(ctx).
		Where("com_id = ?", comId).
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}
