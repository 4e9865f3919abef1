package dto

import "github.com/google/uuid"

type IngestProvDocumentRequest struct {
	ComId        string `json:"comId" validate:"required"`
	ProvNo       int64  `json:"provNo" validate:"required"`
	ObjectKey    string `json:"objectKey" validate:"required"`
	OriginalName string `json:"originalName" validate:"required"`
	Content      string `json:"content" validate:"required"`
}

type IngestProvDocumentResponse struct {
	DocumentId uuid.UUID `json:"documentId"`
	Queued     bool      `json:"queued"`
}

type DeleteProvDocumentResponse struct {
	ProvNo        int64 `json:"provNo"`
	ChunksDeleted int64 `json:"chunksDeleted"`
}

// EmbedProvDocumentMessage is the payload published to the embedding worker
// when a document is accepted for ingestion.
type EmbedProvDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
