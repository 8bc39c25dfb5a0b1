package ws

import (
	"time"

	"github.com/spec-kit/csv-manager/internal/domain"
)

// FileListUpdate is the wire message broadcast when the file set changes.
type FileListUpdate struct {
	Event  string       `json:"event"`
	Action string       `json:"action"`
	File   *FilePayload `json:"file,omitempty"`
	FileID int64        `json:"file_id,omitempty"`
}

// FilePayload describes the affected file on upload events.
type FilePayload struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	FileSize         int64     `json:"file_size"`
	UploaderID       int64     `json:"uploader_id"`
	UploaderUsername string    `json:"uploader_username"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Pong is the liveness reply sent for any inbound client message.
type Pong struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const fileListUpdateEvent = "csv_list_updated"

// NewUploadedMessage builds the broadcast message for a fresh upload.
func NewUploadedMessage(file domain.CSVFile) FileListUpdate {
	return FileListUpdate{
		Event:  fileListUpdateEvent,
		Action: "uploaded",
		File: &FilePayload{
			ID:               file.ID,
			Filename:         file.Filename,
			FileSize:         file.FileSize,
			UploaderID:       file.UploaderID,
			UploaderUsername: file.UploaderUsername,
			UploadedAt:       file.UploadedAt,
		},
	}
}

// NewDeletedMessage builds the broadcast message for a removed file.
func NewDeletedMessage(fileID int64) FileListUpdate {
	return FileListUpdate{
		Event:  fileListUpdateEvent,
		Action: "deleted",
		FileID: fileID,
	}
}

// NewPong builds the liveness reply.
func NewPong() Pong {
	return Pong{Type: "pong", Message: "connected"}
}
