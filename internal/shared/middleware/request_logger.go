package middleware

import (
	"net/http"
	"time"

	"venuebook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id, echoed back in the response,
// and logs it once handled. Server errors recorded on the context are logged
// with their cause.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		reqLog := l.WithRequestID(requestID)
		if partyID := c.GetString("user_id"); partyID != "" {
			reqLog = reqLog.WithPartyID(partyID)
		}
		reqLog.LogHTTPRequest(c, time.Since(start))

		if status := c.Writer.Status(); status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			reqLog.LogHTTPError(c, c.Errors.Last().Err, status)
		}
	}
}
