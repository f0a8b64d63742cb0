package dto

import "github.com/flotech/flotech/internal/model"

// WebhookError is the failure body returned to the automation layer.
// Message is optional detail alongside the short error.
type WebhookError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookSuccess is the success envelope returned after a delivery has
// been persisted.
type WebhookSuccess struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	UserID        string           `json:"userId"`
	MeetingsCount int              `json:"meetingsCount"`
	Meetings      []*model.Meeting `json:"meetings"`
}

// MeetingListResponse represents the authenticated meeting listing.
type MeetingListResponse struct {
	Data  []*model.Meeting `json:"data"`
	Count int              `json:"count"`
}

// IngestionListResponse represents the ingestion audit listing.
type IngestionListResponse struct {
	Data  []*model.Ingestion `json:"data"`
	Count int                `json:"count"`
}
