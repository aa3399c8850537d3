// Package analysis is the HTTP client for the spreadsheet analysis service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// ReportDetails are the logical coordinates the generated reports are filed under
type ReportDetails struct {
	CollegeName string `json:"collegeName"`
	Program     string `json:"program"`
	Batch       string `json:"batch"`
	Semester    string `json:"semester"`
	Session     string `json:"session"`
}

// Request is the body of POST /analyze
type Request struct {
	FilePath      string        `json:"file_path"`
	ReportDetails ReportDetails `json:"report_details"`
}

// Result is the body returned by a successful analysis
type Result struct {
	Result         []map[string]interface{} `json:"result"`
	GeneratedFiles []string                 `json:"generated_files"`
	Message        string                   `json:"message"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client calls the analysis service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client with the given per-request timeout
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "analysis").Logger(),
	}
}

// Analyze submits a staged spreadsheet and returns the generated report locations
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("file", req.FilePath).Msg("Analysis service unreachable")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrAnalysisUnavailable, err)
	}

	c.logger.Info().
		Str("file", req.FilePath).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Analysis service responded")

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error
		if msg == "" {
			msg = "Analysis rejected the file"
		}
		return nil, apperrors.NewValidationError(msg)
	case resp.StatusCode >= 300:
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return nil, fmt.Errorf("%w: status %d: %s %s", apperrors.ErrAnalysisUnavailable, resp.StatusCode, eb.Error, eb.Details)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	return &result, nil
}
