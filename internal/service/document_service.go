package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/pkg/logger"
	"groupware-ai-be/internal/repository/contract"
)

type IDocumentService interface {
	Ingest(ctx context.Context, request *dto.IngestProvDocumentRequest) (*dto.IngestProvDocumentResponse, error)
	Delete(ctx context.Context, comId string, provNo int64) (*dto.DeleteProvDocumentResponse, error)
}

type documentService struct {
	docRepo          contract.ProvDocumentRepository
	chunkRepo        contract.ProvChunkRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(
	docRepo contract.ProvDocumentRepository,
	chunkRepo contract.ProvChunkRepository,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) IDocumentService {
	return &documentService{
		docRepo:          docRepo,
		chunkRepo:        chunkRepo,
		publisherService: publisherService,
		logger:           sysLogger,
	}
}

func (ds *documentService) Ingest(ctx context.Context, request *dto.IngestProvDocumentRequest) (*dto.IngestProvDocumentResponse, error) {
	doc := &model.ProvDocument{
		Id:           uuid.New(),
		ComId:        request.ComId,
		ProvNo:       request.ProvNo,
		ObjectKey:    request.ObjectKey,
		OriginalName: request.OriginalName,
		Content:      request.Content,
		CreatedAt:    time.Now(),
	}
	if err := ds.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	msgPayload := dto.EmbedProvDocumentMessage{DocumentId: doc.Id}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := ds.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	ds.logger.Info("DocumentService", "Document queued for embedding", map[string]interface{}{
		"document_id": doc.Id.String(),
		"com_id":      doc.ComId,
		"prov_no":     doc.ProvNo,
	})

	return &dto.IngestProvDocumentResponse{
		DocumentId: doc.Id,
		Queued:     true,
	}, nil
}

func (ds *documentService) Delete(ctx context.Context, comId string, provNo int64) (*dto.DeleteProvDocumentResponse, error) {
	deleted, err := ds.chunkRepo.DeleteByProv(ctx, comId, provNo)
	if err != nil {
		return nil, err
	}
	if err := ds.docRepo.DeleteByProv(ctx, comId, provNo); err != nil {
		return nil, err
	}

	ds.logger.Info("DocumentService", "Document deleted", map[string]interface{}{
		"com_id":         comId,
		"prov_no":        provNo,
		"chunks_deleted": deleted,
	})

	return &dto.DeleteProvDocumentResponse{
		ProvNo:        provNo,
		ChunksDeleted: deleted,
	}, nil
}
