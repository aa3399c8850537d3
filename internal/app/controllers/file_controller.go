package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/app/services"
	"github.com/yigit/resultsportal/internal/middleware"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/filestorage"
)

// FileController exposes the report registry and the upload flow
type FileController struct {
	registry *services.RegistryService
	staging  filestorage.FileStorage
	logger   zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(registry *services.RegistryService, staging filestorage.FileStorage, logger zerolog.Logger) *FileController {
	return &FileController{
		registry: registry,
		staging:  staging,
		logger:   logger,
	}
}

// GetFiles returns the registry grouped by batch, program and semester
// @Summary List result files
// @Tags files
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.FileTree}
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Router /files/get-files [get]
func (fc *FileController) GetFiles(c *gin.Context) {
	tree, err := fc.registry.ListAll(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStructuredResponse(tree, ""))
}

// Upload stages a spreadsheet for analysis
// @Summary Upload a result spreadsheet
// @Description Accepts .xlsx/.xls only. The returned filePath is passed to /files/analyze.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param file formData file true "Spreadsheet"
// @Success 201 {object} dto.StructuredResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or non-Excel file"
// @Failure 403 {object} dto.ErrorResponse "Admin or faculty only"
// @Router /files/upload [post]
func (fc *FileController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("No file uploaded"))
		return
	}

	info, err := fc.staging.SaveFile(fileHeader)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.UploadResponse{
		FilePath: info.Path,
		FileName: info.Filename,
		FileSize: info.FileSize,
		MimeType: info.MimeType,
	}, "File uploaded successfully"))
}

// CheckFile reports whether reports for a tuple may still be uploaded
// @Summary Check upload availability
// @Tags files
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.FileTupleRequest true "Report tuple"
// @Success 200 {object} dto.SuccessResponse "You can upload the file"
// @Failure 400 {object} dto.ErrorResponse "File already uploaded and analyzed"
// @Router /files/check-file [post]
func (fc *FileController) CheckFile(c *gin.Context) {
	var req dto.FileTupleRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if err := fc.registry.CheckAvailability(c.Request.Context(), req.Tuple); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("You can upload the file"))
}

// SaveFile registers generated report paths under a tuple
// @Summary Save a file record
// @Tags files
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.SaveFileRequest true "Tuple and report paths"
// @Success 200 {object} dto.StructuredResponse{data=dto.FileRecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /files/save-file [post]
func (fc *FileController) SaveFile(c *gin.Context) {
	var req dto.SaveFileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	rec, err := fc.registry.SaveRecord(c.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewFileRecordResponse(rec), "File saved successfully"))
}

// Analyze runs the analysis service on a staged upload and saves the result
// @Summary Analyze a staged spreadsheet
// @Tags files
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.AnalyzeRequest true "Staged file path and report tuple"
// @Success 200 {object} dto.StructuredResponse{data=dto.AnalyzeResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or already analyzed"
// @Failure 502 {object} dto.ErrorResponse "Analysis service unavailable"
// @Router /files/analyze [post]
func (fc *FileController) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	resp, err := fc.registry.Analyze(c.Request.Context(), req)
	if err != nil {
		fc.logger.Warn().Err(err).Str("filePath", req.FilePath).Msg("Analysis failed")
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStructuredResponse(resp, resp.Message))
}

// objectKeyParam strips the leading slash of a catch-all parameter
func objectKeyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

// Download streams a stored report as an attachment
// @Summary Download a result file
// @Tags files
// @Produce application/octet-stream
// @Security CookieAuth
// @Param key path string true "Object key"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/download/{key} [get]
func (fc *FileController) Download(c *gin.Context) {
	obj, name, err := fc.registry.Download(c.Request.Context(), objectKeyParam(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	defer obj.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Delete removes a stored report and every registry reference to it
// @Summary Delete a result file
// @Tags files
// @Produce json
// @Security CookieAuth
// @Param key path string true "Object key"
// @Success 200 {object} dto.SuccessResponse "File deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/delete/{key} [delete]
func (fc *FileController) Delete(c *gin.Context) {
	key := objectKeyParam(c)
	if err := fc.registry.Delete(c.Request.Context(), key); err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			fc.logger.Error().Err(err).Str("key", key).Msg("Failed to delete file")
		}
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("File deleted successfully"))
}

// Synchronize drops registry paths whose objects are gone
// @Summary Synchronize registry with storage
// @Tags files
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.SyncSummary}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /files/synchronize [post]
func (fc *FileController) Synchronize(c *gin.Context) {
	summary, err := fc.registry.Synchronize(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStructuredResponse(summary, "Synchronization completed"))
}
