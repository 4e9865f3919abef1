package service

import (
	"context"
	"fmt"

	"groupware-ai-be/internal/repository/contract"
	"groupware-ai-be/pkg/embedding"
)

type IRetrievalService interface {
	Retrieve(ctx context.Context, comId string, query string, topK int) ([]string, error)
}

type retrievalService struct {
	chunkRepo         contract.ProvChunkRepository
	embeddingProvider embedding.EmbeddingProvider
}

func NewRetrievalService(
	chunkRepo contract.ProvChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
) IRetrievalService {
	return &retrievalService{
		chunkRepo:         chunkRepo,
		embeddingProvider: embeddingProvider,
	}
}

// Retrieve embeds the query and returns the closest regulation passages for
// the tenant, each prefixed with its source document name.
func (rs *retrievalService) Retrieve(ctx context.Context, comId string, query string, topK int) ([]string, error) {
	res, err := rs.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	chunks, err := rs.chunkRepo.SearchSimilar(ctx, comId, res.Embedding.Values, topK)
	if err != nil {
		return nil, err
	}

	passages := make([]string, 0, len(chunks))
	for _, c := range chunks {
		passages = append(passages, fmt.Sprintf("(%s) %s", c.OriginalName, c.Content))
	}
	return passages, nil
}
