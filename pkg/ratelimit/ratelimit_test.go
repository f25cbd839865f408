package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimiterWindow(t *testing.T) {
	mock := clock.NewMock()
	rl := NewLoginRateLimiter(3, 2*time.Minute, mock)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "other IPs are independent")

	mock.Add(90 * time.Second)
	assert.Equal(t, 30*time.Second, rl.RetryAfter("1.2.3.4"))

	mock.Add(29*time.Second + 700*time.Millisecond)
	assert.Equal(t, time.Second, rl.RetryAfter("1.2.3.4"), "sub-second remainder rounds up")

	mock.Add(2 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "new window after expiry")
}

func TestLoginRateLimiterReset(t *testing.T) {
	rl := NewLoginRateLimiter(1, time.Minute, clock.NewMock())
	defer rl.Stop()

	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))
	rl.Reset("ip")
	assert.True(t, rl.Allow("ip"))
	assert.Zero(t, rl.RetryAfter("unknown"))

	rl.Stop()
	rl.Stop()
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ExtractIP(r))
}
