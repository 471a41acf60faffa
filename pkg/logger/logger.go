package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewDiscard returns a logger that drops every record. Used by tests.
func NewDiscard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithPartyID adds the acting party to logger context
func (l *Logger) WithPartyID(partyID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("party_id", partyID)),
	}
}

// WithSlotID scopes the logger to one slot
func (l *Logger) WithSlotID(slotID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("slot_id", slotID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogReservationAdmitted logs the outcome of an admission decision
func (l *Logger) LogReservationAdmitted(ctx context.Context, reservationID, slotID, partyID, status string, partySize int) {
	l.Logger.InfoContext(ctx,
		"Reservation Admitted",
		slog.String("reservation_id", reservationID),
		slog.String("slot_id", slotID),
		slog.String("party_id", partyID),
		slog.String("status", status),
		slog.Int("party_size", partySize),
	)
}

// LogReservationCancelled logs a processed cancellation
func (l *Logger) LogReservationCancelled(ctx context.Context, reservationID, actorID string, refundPercent int) {
	l.Logger.InfoContext(ctx,
		"Reservation Cancelled",
		slog.String("reservation_id", reservationID),
		slog.String("actor_id", actorID),
		slog.Int("refund_percent", refundPercent),
	)
}

// LogOfferIssued logs a waitlist offer
func (l *Logger) LogOfferIssued(ctx context.Context, entryID, slotID string, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Waitlist Offer Issued",
		slog.String("entry_id", entryID),
		slog.String("slot_id", slotID),
		slog.Time("expires_at", expiresAt),
	)
}

// LogOfferExpired logs a lazily or proactively expired offer
func (l *Logger) LogOfferExpired(ctx context.Context, entryID, slotID string) {
	l.Logger.InfoContext(ctx,
		"Waitlist Offer Expired",
		slog.String("entry_id", entryID),
		slog.String("slot_id", slotID),
	)
}

// LogPromotionPass logs the result of one promotion pass
func (l *Logger) LogPromotionPass(ctx context.Context, slotID string, offers int, duration time.Duration) {
	l.Logger.DebugContext(ctx,
		"Promotion Pass",
		slog.String("slot_id", slotID),
		slog.Int("offers", offers),
		slog.Duration("duration", duration),
	)
}

// Security logging methods

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, subject, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("subject", subject),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.Logger.InfoContext(ctx, msg, fieldArgs(fields)...)
}

// WarnWithContext logs a warning with context
func (l *Logger) WarnWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := fieldArgs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.Logger.WarnContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := fieldArgs(fields)
	args = append(args, slog.String("error", err.Error()))
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.Logger.DebugContext(ctx, msg, fieldArgs(fields)...)
}

func fieldArgs(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields)*2+2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
