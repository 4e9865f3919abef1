package dto

import "time"

// HistoryTurn is one prior turn of the conversation, oldest first.
type HistoryTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type RunChatbotRequest struct {
	MessageId   string        `json:"messageId" validate:"required"`
	ComId       string        `json:"comId" validate:"required"`
	EmpId       string        `json:"empId" validate:"required"`
	Question    string        `json:"question" validate:"required"`
	History     []HistoryTurn `json:"history,omitempty" validate:"dive"`
	CallbackUrl string        `json:"callbackUrl" validate:"required"`
	CallbackKey string        `json:"callbackKey,omitempty"`
}

type RunChatbotResponse struct {
	MessageId string `json:"messageId"`
	Queued    bool   `json:"queued"`
}

type RunStatusResponse struct {
	MessageId    string    `json:"messageId"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
