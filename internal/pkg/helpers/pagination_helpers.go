package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/resultsportal/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return uint64((page - 1) * size), uint64(size)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 1
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	}

	currentPage := page
	if currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts pagination parameters. ok is false when
// the request did not ask for a page, in which case callers return everything.
func ParsePaginationParams(c *gin.Context) (page, size int, ok bool) {
	pageStr, hasPage := c.GetQuery("page")
	if !hasPage {
		return 0, 0, false
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size, true
}
