package model

import "time"

// DurationUnknown is stored when the transcript source supplies no
// duration. Fireflies webhook payloads currently never include one.
const DurationUnknown = "N/A"

// Meeting represents a normalized transcript record owned by a user.
// ID is the provider-assigned transcript identifier and doubles as the
// storage key, so repeated deliveries of the same transcript upsert in
// place.
type Meeting struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Duration  string    `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ingestion is an audit record written after a successful webhook
// delivery has been persisted.
type Ingestion struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MeetingIDs []string  `json:"meeting_ids"`
	ReceivedAt time.Time `json:"received_at"`
}
