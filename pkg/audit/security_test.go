package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewLogger(zap.New(core)), logs
}

func TestInjectionAttempt(t *testing.T) {
	l, logs := newObservedLogger()

	l.InjectionAttempt("1' OR '1'='1", "s&1c")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "security event", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, string(EventInjectionAttempt), fields["event_type"])
	assert.Equal(t, "critical", fields["severity"])
	assert.Equal(t, "s&1c", fields["fingerprint"])
}

func TestInjectionAttempt_TruncatesLongInput(t *testing.T) {
	l, logs := newObservedLogger()

	l.InjectionAttempt(strings.Repeat("x", 500), "f")

	require.Equal(t, 1, logs.Len())
	input, ok := logs.All()[0].ContextMap()["input"].(string)
	require.True(t, ok)
	assert.Less(t, len(input), 500)
}

func TestUnsafeQueryRejected(t *testing.T) {
	l, logs := newObservedLogger()

	l.UnsafeQueryRejected("DROP", "")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, string(EventUnsafeQueryRejected), fields["event_type"])
	assert.Equal(t, "DROP", fields["keyword"])
}

func TestQueryExecuted(t *testing.T) {
	l, logs := newObservedLogger()

	l.QueryExecuted("token-1", 42, 120*time.Millisecond)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, string(EventQueryExecuted), fields["event_type"])
	assert.Equal(t, int64(42), fields["row_count"])
}
