package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter создает limiter с управляемыми часами
func newTestLimiter(t *testing.T, requests int, window time.Duration, burst int) (*RateLimiter, *time.Time) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	limiter := NewRateLimiter(requests, window, burst, logger)
	t.Cleanup(limiter.Stop)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestNewRateLimiter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, time.Minute, 5)

	assert.NotNil(t, limiter.limiters)
	assert.NotNil(t, limiter.cleanupC)
	assert.Equal(t, 5, limiter.burst)
	assert.Equal(t, 2*time.Minute, limiter.idle)
	assert.Equal(t, 6, limiter.retryAfter())

	// Повторный Stop не паникует
	assert.NotPanics(t, func() {
		limiter.Stop()
		limiter.Stop()
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("Burst within limit is allowed", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 10, time.Minute, 5)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("192.168.1.1"), "request over burst should be denied")
	})

	t.Run("Different keys are tracked separately", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 10, time.Minute, 2)

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"), "key1 over limit")

		assert.True(t, limiter.Allow("10.0.0.2"))
		assert.True(t, limiter.Allow("10.0.0.2"))
		assert.False(t, limiter.Allow("10.0.0.2"), "key2 over limit")
	})

	t.Run("Tokens refill over time", func(t *testing.T) {
		// 10 запросов в минуту: один токен каждые 6 секунд
		limiter, now := newTestLimiter(t, 10, time.Minute, 2)

		assert.True(t, limiter.Allow("k"))
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))

		*now = now.Add(3 * time.Second)
		assert.False(t, limiter.Allow("k"), "half a token is not enough")

		*now = now.Add(4 * time.Second)
		assert.True(t, limiter.Allow("k"), "one token refilled")
		assert.False(t, limiter.Allow("k"))
	})
}

func TestRateLimiter_CleanupIdle(t *testing.T) {
	limiter, now := newTestLimiter(t, 10, time.Minute, 2)

	limiter.Allow("old")
	*now = now.Add(90 * time.Second)
	limiter.Allow("fresh")

	*now = now.Add(60 * time.Second)
	limiter.cleanupIdle()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.limiters, "old")
	assert.Contains(t, limiter.limiters, "fresh")
}

func TestRateLimiter_Middleware(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, time.Minute, 3)

	var logBuf strings.Builder
	limiter.logger = slog.New(slog.NewTextHandler(&logBuf, nil))

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Разные порты одного клиента делят один лимит
	for i := 0; i < 3; i++ {
		w := send(fmt.Sprintf("192.168.1.1:%d", 40000+i))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := send("192.168.1.1:50000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "6", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
	assert.Contains(t, logBuf.String(), "Rate limit exceeded")
	assert.Contains(t, logBuf.String(), "192.168.1.1")

	assert.Equal(t, http.StatusOK, send("192.168.1.2:40000").Code)
}

func TestRateLimiter_ClientIP(t *testing.T) {
	proxies := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("2001:db8:ffff::/48"),
	}

	tests := []struct {
		headers    map[string]string
		name       string
		remoteAddr string
		expectedIP string
		trusted    []netip.Prefix
	}{
		{
			name:       "X-Forwarded-For from untrusted peer is ignored",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
			trusted:    proxies,
		},
		{
			name:       "X-Real-IP from untrusted peer is ignored",
			headers:    map[string]string{"X-Real-IP": "203.0.113.5"},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
			trusted:    proxies,
		},
		{
			name:       "Headers are ignored without trusted proxies",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "203.0.113.5"},
			remoteAddr: "10.0.0.2:12345",
			expectedIP: "10.0.0.2",
		},
		{
			name:       "X-Forwarded-For from trusted proxy",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "10.0.0.2:12345",
			expectedIP: "203.0.113.1",
			trusted:    proxies,
		},
		{
			name:       "Spoofed leftmost hop is skipped",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.1, 10.0.0.7"},
			remoteAddr: "10.0.0.2:12345",
			expectedIP: "203.0.113.1",
			trusted:    proxies,
		},
		{
			name:       "X-Real-IP from trusted proxy",
			headers:    map[string]string{"X-Real-IP": "203.0.113.5"},
			remoteAddr: "[2001:db8:ffff::1]:443",
			expectedIP: "203.0.113.5",
			trusted:    proxies,
		},
		{
			name:       "Trusted proxy without headers",
			remoteAddr: "10.0.0.2:12345",
			expectedIP: "10.0.0.2",
			trusted:    proxies,
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "IPv6 RemoteAddr",
			remoteAddr: "[2001:db8::1]:443",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "Malformed RemoteAddr is used as is",
			remoteAddr: "pipe",
			expectedIP: "pipe",
			trusted:    proxies,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(10, time.Minute, 5, logger, WithTrustedProxies(tt.trusted...))
			t.Cleanup(limiter.Stop)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expectedIP, limiter.clientIP(req))
		})
	}
}

func TestRateLimiter_Middleware_RotatedForwardedForIsLimited(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, time.Minute, 2)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:50000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
