package dto

import (
	"time"

	"github.com/spec-kit/csv-manager/internal/domain"
)

// CSVFileResponse is the metadata view of an uploaded file.
type CSVFileResponse struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	FileSize         int64     `json:"file_size"`
	UploaderID       int64     `json:"uploader_id"`
	UploaderUsername string    `json:"uploader_username"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// CSVViewResponse carries parsed file contents.
type CSVViewResponse struct {
	Filename      string              `json:"filename"`
	Headers       []string            `json:"headers"`
	Rows          []map[string]string `json:"rows"`
	TotalRows     int                 `json:"total_rows"`
	DisplayedRows int                 `json:"displayed_rows"`
}

// NewCSVFileResponse maps a domain file record.
func NewCSVFileResponse(file *domain.CSVFile) CSVFileResponse {
	return CSVFileResponse{
		ID:               file.ID,
		Filename:         file.Filename,
		FileSize:         file.FileSize,
		UploaderID:       file.UploaderID,
		UploaderUsername: file.UploaderUsername,
		UploadedAt:       file.UploadedAt,
	}
}
