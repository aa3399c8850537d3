package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/logger"
)

type stubValidator struct {
	sessions map[string]*models.User
	err      error
}

func (s stubValidator) ValidateSession(_ context.Context, token string) (*models.User, *models.Session, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	user, ok := s.sessions[token]
	if !ok {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Not authorized, token failed")
	}
	return user, &models.Session{ID: uuid.New(), UserID: user.ID}, nil
}

func newTestRouter(v SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(v, "token", logger.Nop())

	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Nop()))
	protected := r.Group("/", m.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "session": CurrentSessionID(c) != uuid.Nil})
	})
	protected.GET("/admin", m.Authorize(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/unguarded-admin", m.Authorize(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	if body.Success || body.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return body
}

func TestAuthenticate(t *testing.T) {
	student := &models.User{ID: 7, Role: models.RoleStudent}
	r := newTestRouter(stubValidator{sessions: map[string]*models.User{"good": student}})

	t.Run("missing cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if body := decodeError(t, rec); body.Error.Code != dto.ErrorCodeInvalidToken {
			t.Fatalf("code = %s", body.Error.Code)
		}
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["id"] != float64(7) || body["session"] != true {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestAuthenticateExpired(t *testing.T) {
	r := newTestRouter(stubValidator{err: apperrors.NewCustomError(apperrors.ErrTokenExpired, "Session expired")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "stale"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Code != dto.ErrorCodeExpiredToken || body.Error.Message != "Session expired" {
		t.Fatalf("unexpected error %+v", body.Error)
	}
}

func TestAuthorize(t *testing.T) {
	r := newTestRouter(stubValidator{sessions: map[string]*models.User{
		"student": {ID: 1, Role: models.RoleStudent},
		"admin":   {ID: 2, Role: models.RoleAdmin},
	}})

	for _, tc := range []struct {
		token string
		want  int
	}{
		{"student", http.StatusForbidden},
		{"admin", http.StatusNoContent},
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: tc.token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.token, rec.Code, tc.want)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unguarded-admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("authorize without authenticate: status = %d, want 401", rec.Code)
	}
}

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
		msg    string
	}{
		{"validation", apperrors.NewValidationError("email is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "email is required"},
		{"conflict", apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, dto.ErrorCodeConflict, "User already exists"},
		{"credentials", apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials"), http.StatusBadRequest, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden, "nope"},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"},
		{"not found", fmt.Errorf("lookup: %w", apperrors.ErrFileNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "File not found"},
		{"upstream", apperrors.ErrAnalysisUnavailable, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Analysis service unavailable"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			body := decodeError(t, rec)
			if body.Error.Code != tc.code || body.Error.Message != tc.msg {
				t.Fatalf("got %s %q, want %s %q", body.Error.Code, body.Error.Message, tc.code, tc.msg)
			}
			if !c.IsAborted() {
				t.Fatal("context should be aborted")
			}
		})
	}
}

func TestValidationDetailsExposed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	err := apperrors.NewCustomError(apperrors.ErrValidationFailed, "program is required").
		WithDetails(map[string]interface{}{"program": "program is required"})
	HandleAPIError(c, err)

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error.Details["program"] != "program is required" {
		t.Fatalf("details missing: %s", rec.Body.String())
	}
}

func TestRecoveryAndRequestID(t *testing.T) {
	r := newTestRouter(stubValidator{})
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
	if body := decodeError(t, rec); body.Error.Message != "Internal server error" {
		t.Fatalf("panic detail leaked: %q", body.Error.Message)
	}
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	var req dto.LoginRequest
	if BindJSON(c, &req) {
		t.Fatal("malformed body must not bind")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error.Code != dto.ErrorCodeInvalidRequest {
		t.Fatalf("code = %s", body.Error.Code)
	}
}
