package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.FilePath != "uploads/x/marks.xlsx" || req.ReportDetails.Program != "BCA" {
			t.Errorf("unexpected body: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result":          []map[string]interface{}{{"name": "A", "cpi": 8.1}},
			"generated_files": []string{"https://b.s3.r.amazonaws.com/2021-2025/BCA/Sem 1/top.xlsx"},
			"message":         "Analysis completed successfully",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, zerolog.Nop())
	res, err := c.Analyze(context.Background(), Request{
		FilePath:      "uploads/x/marks.xlsx",
		ReportDetails: ReportDetails{Program: "BCA", Batch: "2021-2025", Semester: "Sem 1"},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.GeneratedFiles) != 1 || len(res.Result) != 1 || res.Message == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad request", http.StatusBadRequest, `{"error":"No file path provided"}`, apperrors.ErrValidationFailed},
		{"missing file", http.StatusNotFound, `{"error":"File not found at path: x"}`, apperrors.ErrValidationFailed},
		{"server failure", http.StatusInternalServerError, `{"error":"Analysis failed","details":"boom"}`, apperrors.ErrAnalysisUnavailable},
		{"garbage", http.StatusOK, `not json`, apperrors.ErrAnalysisUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, zerolog.Nop()).Analyze(context.Background(), Request{FilePath: "x"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 200*time.Millisecond, zerolog.Nop()).Analyze(context.Background(), Request{FilePath: "x"})
	if !errors.Is(err, apperrors.ErrAnalysisUnavailable) {
		t.Fatalf("err = %v, want ErrAnalysisUnavailable", err)
	}
}
