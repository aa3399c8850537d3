package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/resultsportal/internal/app/models/dto"
)

// BindJSON decodes the request body into obj. On malformed input it writes a
// 400 and returns false. Field rules are checked by the services.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").
			WithSeverity(dto.ErrorSeverityWarning).
			WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return false
	}
	return true
}
