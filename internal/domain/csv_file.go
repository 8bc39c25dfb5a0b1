package domain

import "time"

// CSVFile is the metadata record for an uploaded CSV file. The stored bytes
// live under the configured upload directory at StoragePath; Filename is the
// display name the uploader gave the file.
type CSVFile struct {
	ID               int64
	Filename         string
	StoragePath      string
	FileSize         int64
	UploaderID       int64
	UploaderUsername string
	UploadedAt       time.Time
}
