package filestorage

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// Declared Content-Type values browsers send for spreadsheets
var allowedDeclared = map[string]bool{
	mimeXLSX:                   true,
	mimeXLS:                    true,
	"application/octet-stream": true,
	"":                         true,
}

// Detected types accepted after sniffing the first bytes
var allowedDetected = []string{mimeXLSX, mimeXLS, "application/x-ole-storage"}

// ErrNotExcel is returned for uploads that are not spreadsheets
var ErrNotExcel = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Only Excel files are allowed!")

// ValidateExcel checks extension, declared type and sniffed content of an upload
// and returns the detected MIME type.
func ValidateExcel(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewValidationError("No file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", ErrNotExcel
	}

	declared := fileHeader.Header.Get("Content-Type")
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mt
		}
	}
	if !allowedDeclared[declared] {
		return "", ErrNotExcel
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	for _, allowed := range allowedDetected {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrNotExcel.WithDetails(map[string]interface{}{"detected": detected.String()})
}
