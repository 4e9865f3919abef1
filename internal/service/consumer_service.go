package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/repository/contract"
	"groupware-ai-be/pkg/embedding"
	"groupware-ai-be/pkg/utils"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	docRepo           contract.ProvDocumentRepository
	chunkRepo         contract.ProvChunkRepository
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	docRepo contract.ProvDocumentRepository,
	chunkRepo contract.ProvChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		docRepo:           docRepo,
		chunkRepo:         chunkRepo,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedProvDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	doc, err := cs.docRepo.FindById(ctx, payload.DocumentId)
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if doc == nil {
		log.Printf("[WARN] Document %s not found, dropping", payload.DocumentId)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Embedding document %s (prov %d, content length: %d)",
		doc.Id, doc.ProvNo, len(doc.Content))

	// Chunk sized for regulation clauses; overlap preserves cross-clause
	// references.
	parts := utils.SplitText(doc.Content, 800, 200)

	chunks := make([]*model.ProvChunk, 0, len(parts))
	for i, part := range parts {
		res, err := cs.embeddingProvider.Generate(part, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, doc.Id, err)
			msg.Nack()
			return
		}
		chunks = append(chunks, &model.ProvChunk{
			Id:           uuid.New(),
			ComId:        doc.ComId,
			ProvNo:       doc.ProvNo,
			ObjectKey:    doc.ObjectKey,
			OriginalName: doc.OriginalName,
			ChunkIndex:   i,
			Content:      part,
			Embedding:    pgvector.NewVector(res.Embedding.Values),
		})
	}

	// Re-ingest replaces: old vectors for this provision go away first.
	if _, err := cs.chunkRepo.DeleteByProv(ctx, doc.ComId, doc.ProvNo); err != nil {
		log.Printf("[ERROR] Failed to clear old chunks for prov %d: %v", doc.ProvNo, err)
		msg.Nack()
		return
	}
	if err := cs.chunkRepo.CreateBulk(ctx, chunks); err != nil {
		log.Printf("[ERROR] Failed to store %d chunks for document %s: %v", len(chunks), doc.Id, err)
		msg.Nack()
		return
	}
	if err := cs.docRepo.MarkEmbedded(ctx, doc.Id, len(chunks)); err != nil {
		log.Printf("[ERROR] Failed to mark document %s embedded: %v", doc.Id, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Document %s embedded into %d chunks", doc.Id, len(chunks))
	msg.Ack()
}
