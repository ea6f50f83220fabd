package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Logger logs one line per request. An incoming X-Request-ID is kept, otherwise one is
// generated; it is echoed on the response and attached to the request context logger.
// Successful requests to quietPaths are not logged.
func Logger(quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		reqLog := log.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		if quiet[c.FullPath()] && status < http.StatusBadRequest {
			return
		}

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = reqLog.Error()
		case status >= http.StatusBadRequest:
			event = reqLog.Warn()
		default:
			event = reqLog.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// RequestID returns the id assigned by Logger, or "" outside a logged request
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery turns a panic into a 500 carrying the request id
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				l := zerolog.Ctx(c.Request.Context())
				if l.GetLevel() == zerolog.Disabled {
					l = &log.Logger
				}
				l.Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal server error",
					"request_id": RequestID(c),
				})
			}
		}()
		c.Next()
	}
}
