package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger("/health"), Recovery())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/articles/:id", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("handler")
		c.JSON(http.StatusOK, gin.H{"request_id": RequestID(c)})
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestLoggerAssignsRequestID(t *testing.T) {
	buf := captureLogs(t)
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/articles/3?x=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, w.Body.String(), id)

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "handler", lines[0]["message"])
	assert.Equal(t, id, lines[0]["request_id"])

	assert.Equal(t, "request", lines[1]["message"])
	assert.Equal(t, "info", lines[1]["level"])
	assert.Equal(t, "/articles/:id", lines[1]["route"])
	assert.Equal(t, "x=1", lines[1]["query"])
	assert.EqualValues(t, 200, lines[1]["status"])
	assert.Equal(t, id, lines[1]["request_id"])
}

func TestLoggerKeepsIncomingRequestID(t *testing.T) {
	captureLogs(t)
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/articles/3", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLoggerQuietPaths(t *testing.T) {
	buf := captureLogs(t)
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestRecovery(t *testing.T) {
	buf := captureLogs(t)
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), body["request_id"])

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "recovered from panic", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
}
