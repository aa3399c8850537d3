package filestorage

import "mime/multipart"

// FileInfo represents information about a staged file
type FileInfo struct {
	Path     string // Filesystem path handed to the analysis service
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // Detected MIME type
}

// FileStorage stages uploads on a filesystem shared with the analysis service
type FileStorage interface {
	// SaveFile validates and stores an upload, keeping its original name
	SaveFile(fileHeader *multipart.FileHeader) (*FileInfo, error)

	// DeleteFile removes a staged file and its staging directory
	DeleteFile(filePath string) error

	// GetFullPath resolves a staged path, rejecting anything outside the staging root
	GetFullPath(filePath string) (string, error)
}
