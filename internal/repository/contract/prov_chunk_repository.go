package contract

import (
	"context"

	"groupware-ai-be/internal/model"
)

type ProvChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*model.ProvChunk) error
	DeleteByProv(ctx context.Context, comId string, provNo int64) (int64, error)
	// SearchSimilar returns the chunks closest to the query embedding for
	// one tenant, ranked by cosine distance.
	SearchSimilar(ctx context.Context, comId string, embedding []float32, limit int) ([]*model.ProvChunk, error)
}
