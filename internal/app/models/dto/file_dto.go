package dto

import (
	"github.com/yigit/resultsportal/internal/app/models"
)

// FileTupleRequest identifies an analysis run
type FileTupleRequest struct {
	models.Tuple
}

// SaveFileRequest registers generated report locations under a tuple
type SaveFileRequest struct {
	models.Tuple
	ResultPath []string `json:"result_path" validate:"required,min=1,dive,required"`
}

// AnalyzeRequest asks the analysis service to process a staged upload
type AnalyzeRequest struct {
	FilePath      string       `json:"file_path" validate:"required,notblank" example:"3b0c.../marks.xlsx"`
	ReportDetails models.Tuple `json:"report_details"`
}

// UploadResponse describes a staged upload
type UploadResponse struct {
	FilePath string `json:"filePath" example:"3b0c6f0e-7c3a-4a57-9a0b-9a1e2f1d6b11/marks.xlsx"`
	FileName string `json:"fileName" example:"marks.xlsx"`
	FileSize int64  `json:"fileSize" example:"10240"`
	MimeType string `json:"mimeType" example:"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"`
}

// FileEntry is one downloadable report. Key is empty when the stored path
// cannot be mapped onto the bucket.
type FileEntry struct {
	FileName string `json:"file_name" example:"top_five.xlsx"`
	FilePath string `json:"file_path" example:"https://reports.s3.ap-south-1.amazonaws.com/2021-2025/BCA/Third%20Semester/top_five.xlsx"`
	Key      string `json:"key,omitempty" example:"2021-2025/BCA/Third Semester/top_five.xlsx"`
}

// FileGroup holds the files of a single registry record
type FileGroup struct {
	File []FileEntry `json:"file"`
}

// FileTree is batch -> program -> semester -> groups, one group per record
type FileTree map[string]map[string]map[string][]FileGroup

// FileRecordResponse is the public view of a registry record
type FileRecordResponse struct {
	ID          string   `json:"id" example:"665f1c2e8b3e4a0012345678"`
	CollegeName string   `json:"collegeName" example:"City College"`
	Program     string   `json:"program" example:"BCA"`
	Batch       string   `json:"batch" example:"2021-2025"`
	Semester    string   `json:"semester" example:"Third Semester"`
	Session     string   `json:"session" example:"2023"`
	ResultPath  []string `json:"result_path"`
}

// NewFileRecordResponse converts a registry record
func NewFileRecordResponse(r *models.FileRecord) *FileRecordResponse {
	if r == nil {
		return nil
	}
	return &FileRecordResponse{
		ID:          r.ID.Hex(),
		CollegeName: r.CollegeName,
		Program:     r.Program,
		Batch:       r.Batch,
		Semester:    r.Semester,
		Session:     r.Session,
		ResultPath:  r.ResultPath,
	}
}

// AnalyzeResponse is returned by the analysis orchestration
type AnalyzeResponse struct {
	Result  []map[string]interface{} `json:"result"`
	Message string                   `json:"message,omitempty"`
	Record  *FileRecordResponse      `json:"record"`
}

// SyncSummary reports a reconciliation pass
type SyncSummary struct {
	TotalDocuments    int      `json:"totalDocuments" example:"12"`
	TotalPathsChecked int      `json:"totalPathsChecked" example:"40"`
	PathsRemoved      int      `json:"pathsRemoved" example:"3"`
	RecordsDeleted    int      `json:"recordsDeleted" example:"1"`
	Errors            []string `json:"errors"`
}
