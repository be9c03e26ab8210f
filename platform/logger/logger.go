// Package logger wraps slog with the structured fields and event
// helpers the services log with.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// DonorIDKey is the context key for the donor being processed
	DonorIDKey contextKey = "donor_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and donor_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if donorID, ok := ctx.Value(DonorIDKey).(int64); ok && donorID != 0 {
		newLogger = newLogger.WithDonorID(donorID)
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithDonorID returns a logger with the donor identifier
func (l *Logger) WithDonorID(donorID int64) *Logger {
	return &Logger{
		Logger: l.With(slog.Int64("donor_id", donorID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// StoreError logs a record store failure
func (l *Logger) StoreError(collection, operation string, err error) {
	l.Error("store_error",
		slog.String("collection", collection),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RowSkipped logs a malformed record-store row that was skipped
func (l *Logger) RowSkipped(collection string, err error) {
	l.Warn("row_skipped",
		slog.String("collection", collection),
		slog.String("error", err.Error()),
	)
}

// DataIntegrityWarning logs a reconciliation invariant violation
func (l *Logger) DataIntegrityWarning(check string, donorID int64, detail string) {
	l.Warn("data_integrity",
		slog.String("check", check),
		slog.Int64("donor_id", donorID),
		slog.String("detail", detail),
	)
}

// ReconcileOutcome logs the result of an eligibility reconciliation run
func (l *Logger) ReconcileOutcome(donorID int64, applied bool, reason string) {
	if applied {
		l.Info("reconcile_outcome",
			slog.Int64("donor_id", donorID),
			slog.Bool("applied", true),
		)
	} else {
		l.Info("reconcile_outcome",
			slog.Int64("donor_id", donorID),
			slog.Bool("applied", false),
			slog.String("reason", reason),
		)
	}
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
