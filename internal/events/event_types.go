package events

import (
	"time"

	"github.com/spec-kit/csv-manager/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFileUploaded EventType = "file_uploaded"
	EventFileDeleted  EventType = "file_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// FileUploadedPayload carries the new file's metadata.
type FileUploadedPayload struct {
	File domain.CSVFile `json:"file"`
}

// FileDeletedPayload identifies the removed file.
type FileDeletedPayload struct {
	FileID int64 `json:"file_id"`
}
