package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsFirstRequest(t *testing.T) {
	rl := NewRateLimiter(15 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_BlocksWithinInterval(t *testing.T) {
	rl := NewRateLimiter(15 * time.Second)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_CallersAreIndependent(t *testing.T) {
	rl := NewRateLimiter(15 * time.Second)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_RecoversAfterInterval(t *testing.T) {
	rl := NewRateLimiter(10 * time.Millisecond)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(15 * time.Second)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCallerKey_StripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:12345"
	assert.Equal(t, "192.168.1.5", CallerKey(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", CallerKey(req))
}
