package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size          int
		wantOffset, wantLim uint64
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{2, 1000, DefaultPageSize, DefaultPageSize},
	}
	for _, tt := range tests {
		off, lim := CalculateOffsetLimit(tt.page, tt.size)
		if off != tt.wantOffset || lim != tt.wantLim {
			t.Fatalf("CalculateOffsetLimit(%d,%d) = %d,%d want %d,%d", tt.page, tt.size, off, lim, tt.wantOffset, tt.wantLim)
		}
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 9, 10)
	if info.TotalPages != 5 || info.CurrentPage != 5 || info.TotalItems != 45 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if empty := NewPaginationInfo(0, 1, 10); empty.TotalPages != 1 {
		t.Fatalf("empty result should have one page: %+v", empty)
	}
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users", nil)
	if _, _, ok := ParsePaginationParams(c); ok {
		t.Fatal("no page param should disable pagination")
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users?page=2&size=5", nil)
	page, size, ok := ParsePaginationParams(c)
	if !ok || page != 2 || size != 5 {
		t.Fatalf("got %d,%d,%v", page, size, ok)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users?page=x&size=-1", nil)
	page, size, ok = ParsePaginationParams(c)
	if !ok || page != DefaultPage || size != DefaultPageSize {
		t.Fatalf("got %d,%d,%v", page, size, ok)
	}
}

func TestParseDuration(t *testing.T) {
	if d := ParseDuration("90m", time.Second); d != 90*time.Minute {
		t.Fatalf("ParseDuration = %v", d)
	}
	if d := ParseDuration("soon", time.Second); d != time.Second {
		t.Fatalf("fallback = %v", d)
	}
}

func TestNullHelpers(t *testing.T) {
	s := "BCA"
	if ns := GetNullString(&s); !ns.Valid || *StringPtr(ns) != "BCA" {
		t.Fatalf("GetNullString = %+v", ns)
	}
	blank := ""
	if GetNullString(&blank).Valid || GetNullString(nil).Valid {
		t.Fatal("blank and nil must be NULL")
	}
	year := 2021
	if ni := GetNullInt32(&year); !ni.Valid || *IntPtr(ni) != 2021 {
		t.Fatalf("GetNullInt32 = %+v", ni)
	}
	if IntPtr(GetNullInt32(nil)) != nil {
		t.Fatal("nil int must round trip to nil")
	}
}
