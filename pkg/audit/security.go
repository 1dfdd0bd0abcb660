// Package audit provides security audit logging for SIEM consumption.
// Security-relevant events are logged as structured JSON under a dedicated
// logger name so they can be filtered from operational noise.
package audit

import (
	"time"

	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and
// alerting.
type SecurityEventType string

const (
	// EventInjectionAttempt is logged when libinjection flags an input.
	EventInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventUnsafeQueryRejected is logged when a generated statement fails
	// safety validation.
	EventUnsafeQueryRejected SecurityEventType = "unsafe_query_rejected"
	// EventQueryExecuted is logged for each confirmed execution.
	EventQueryExecuted SecurityEventType = "query_executed"
)

// Logger emits security audit events.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a security audit logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.Named("security_audit")}
}

// InjectionAttempt records an input that fingerprinted as SQL injection.
// The input itself is truncated before logging.
func (l *Logger) InjectionAttempt(input, fingerprint string) {
	l.logger.Warn("security event",
		zap.String("event_type", string(EventInjectionAttempt)),
		zap.Time("timestamp", time.Now()),
		zap.String("severity", "critical"),
		zap.String("fingerprint", fingerprint),
		zap.String("input", logging.SanitizeQuery(input)))
}

// UnsafeQueryRejected records a generated statement that failed validation.
func (l *Logger) UnsafeQueryRejected(keyword, reason string) {
	l.logger.Warn("security event",
		zap.String("event_type", string(EventUnsafeQueryRejected)),
		zap.Time("timestamp", time.Now()),
		zap.String("severity", "warning"),
		zap.String("keyword", keyword),
		zap.String("reason", reason))
}

// QueryExecuted records a confirmed execution.
func (l *Logger) QueryExecuted(token string, rowCount int, duration time.Duration) {
	l.logger.Info("security event",
		zap.String("event_type", string(EventQueryExecuted)),
		zap.Time("timestamp", time.Now()),
		zap.String("severity", "info"),
		zap.String("token", token),
		zap.Int("row_count", rowCount),
		zap.Duration("duration", duration))
}
