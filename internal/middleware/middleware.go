package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models/dto"
)

// ContextKeyRequestID holds the request id
const ContextKeyRequestID = "requestID"

const requestIDHeader = "X-Request-Id"

// RequestID propagates an incoming X-Request-Id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one line per request
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("requestID", c.GetString(ContextKeyRequestID)).
			Msg("Request handled")
	}
}

// Recovery turns a panic into a generic 500
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("path", c.Request.URL.Path).
					Str("requestID", c.GetString(ContextKeyRequestID)).
					Msg("Recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			}
		}()
		c.Next()
	}
}
