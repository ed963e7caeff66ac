package models

import "encoding/json"

// Project is a monitored GitHub repository registration. WebhookID,
// WebhookURL and DeliveryID are nil until a webhook has been registered
// with GitHub; the three are set together or not at all.
type Project struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Repository  string  `json:"repository"` // "owner/name"
	Description string  `json:"description,omitempty"`
	WebhookID   *string `json:"webhook_id"`
	WebhookURL  *string `json:"webhook_url"`
	DeliveryID  *string `json:"delivery_id,omitempty"`
	CreatedAt   int64   `json:"created_at"`

	// Loaded on demand; stored in the events table.
	Triggers []*Trigger `json:"events,omitempty"`
}

// Trigger maps one canonical event type to a local file path. The file is
// never executed by this service; the dispatch pipeline only records intent.
type Trigger struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id"`
	EventType    string `json:"event_type"`
	CodeFilePath string `json:"code_file_path"`
	Description  string `json:"description,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    int64  `json:"created_at"`
}

const (
	DispatchStatusSuccess = "success"
	DispatchStatusError   = "error"
)

// DispatchLog is one audit row per (delivery, matched trigger) pair.
// Payload holds the inbound delivery body verbatim.
type DispatchLog struct {
	ID           string          `json:"id"`
	EventID      string          `json:"event_id"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}
