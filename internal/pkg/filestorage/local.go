package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// LocalStorage stages uploaded spreadsheets under basePath/<uuid>/<original name>.
// The analysis service reads from the same directory, so paths are filesystem paths.
type LocalStorage struct {
	basePath string
	maxSize  int64
	logger   zerolog.Logger
}

// NewLocalStorage creates the staging root if needed. maxSize <= 0 disables the size limit.
func NewLocalStorage(basePath string, maxSize int64, logger zerolog.Logger) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", basePath, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		logger.Error().Err(err).Str("path", abs).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", abs, err)
	}
	logger.Info().Str("path", abs).Msg("Upload staging directory ensured")

	return &LocalStorage{basePath: abs, maxSize: maxSize, logger: logger}, nil
}

// SaveFile validates the upload as a spreadsheet and stores it
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (*FileInfo, error) {
	mimeType, err := ValidateExcel(fileHeader)
	if err != nil {
		return nil, err
	}
	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File exceeds the %d MB limit", ls.maxSize>>20))
	}

	name := sanitizeFilename(fileHeader.Filename)
	dir := filepath.Join(ls.basePath, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	ls.logger.Info().Str("filename", name).Str("path", dstPath).Int64("size", written).Msg("Upload staged")
	return &FileInfo{
		Path:     dstPath,
		Filename: name,
		FileSize: written,
		MimeType: mimeType,
	}, nil
}

// DeleteFile removes a staged file and its staging directory.
// Missing files are not an error.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	full, err := ls.GetFullPath(filePath)
	if err != nil {
		return err
	}

	target := full
	if parent := filepath.Dir(full); parent != ls.basePath {
		target = parent
	}
	if err := os.RemoveAll(target); err != nil {
		ls.logger.Error().Err(err).Str("path", target).Msg("Failed to delete staged file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	ls.logger.Debug().Str("path", target).Msg("Staged file removed")
	return nil
}

// GetFullPath resolves filePath against the staging root
func (ls *LocalStorage) GetFullPath(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", apperrors.NewValidationError("file path is required")
	}

	full := filePath
	if !filepath.IsAbs(full) {
		full = filepath.Join(ls.basePath, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(ls.basePath, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", apperrors.NewValidationError("file path is outside the upload directory")
	}
	return full, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "upload.xlsx"
	}
	return name
}
