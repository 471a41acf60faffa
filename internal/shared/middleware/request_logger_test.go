package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuebook/internal/shared/utils/response"
	"venuebook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordingLogger(buf *bytes.Buffer) *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		requestID string
		handler   gin.HandlerFunc
		wantCode  int
		wantLogs  []string
		absent    []string
	}{
		{
			name:      "success keeps the caller's request id",
			requestID: "req-123",
			handler: func(c *gin.Context) {
				c.Set("user_id", "party-1")
				response.RespondSuccess(c, http.StatusOK, "ok", nil)
			},
			wantCode: http.StatusOK,
			wantLogs: []string{`"request_id":"req-123"`, `"party_id":"party-1"`, `"msg":"HTTP Request"`},
			absent:   []string{"HTTP Error"},
		},
		{
			name:      "internal errors are logged with their cause",
			requestID: "req-500",
			handler: func(c *gin.Context) {
				response.RespondError(c, errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
			wantLogs: []string{`"msg":"HTTP Error"`, "connection reset", `"request_id":"req-500"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			engine := gin.New()
			engine.Use(RequestLogger(newRecordingLogger(&buf)))
			engine.GET("/reservations", tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
			req.Header.Set(RequestIDHeader, tt.requestID)
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.requestID, rec.Header().Get(RequestIDHeader))
			for _, want := range tt.wantLogs {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(RequestLogger(newRecordingLogger(&buf)))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, buf.String(), id)
}
