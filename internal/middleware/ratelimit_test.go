package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedHandler(t *testing.T, addr string, limit int, window time.Duration) http.Handler {
	t.Helper()
	redisClient := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { redisClient.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            window,
		KeyPrefix:         "test_rate_limit",
	}

	logger := zap.NewNop()
	return ErrorHandlingMiddleware(logger, true)(
		RateLimitMiddleware(redisClient, config, logger)(okHandler()),
	)
}

// Property: exactly the configured number of requests pass per window
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
				return false
			}
			defer mr.Close()

			handler := newLimitedHandler(t, mr.Addr(), requestsPerWindow, time.Minute)

			successCount := 0
			blockedCount := 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				req := httptest.NewRequest("GET", "/api/products", nil)
				req.RemoteAddr = "192.168.1.100:5000"
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					if errorCode(t, w) != "RATE_LIMIT_EXCEEDED" {
						return false
					}
					blockedCount++
				}
			}

			return successCount == requestsPerWindow && blockedCount == excessRequests
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_WindowResets(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	handler := newLimitedHandler(t, mr.Addr(), 2, time.Minute)

	serve := func() int {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusTooManyRequests, serve())

	mr.FastForward(time.Minute + time.Second)

	assert.Equal(t, http.StatusOK, serve())
}

func TestRateLimit_ClientsAreCountedSeparately(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	handler := newLimitedHandler(t, mr.Addr(), 1, time.Minute)

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}

	// same host, different source port
	req := httptest.NewRequest("GET", "/api/products", nil)
	req.RemoteAddr = "10.0.0.1:2000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_KeyedByClientAddress(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	handler := newLimitedHandler(t, mr.Addr(), 1, time.Minute)

	for _, token := range []string{"", "Bearer a.b.c"} {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.RemoteAddr = "10.0.0.9:1000"
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.True(t, mr.Exists("test_rate_limit:10.0.0.9"))
	assert.Equal(t, []string{"test_rate_limit:10.0.0.9"}, mr.Keys())
	count, err := mr.Get("test_rate_limit:10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	handler := newLimitedHandler(t, addr, 1, time.Minute)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/products", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// Property: rate limit headers are present on allowed responses
func TestProperty_RateLimitHeadersAreSet(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rate limit headers are present in responses", prop.ForAll(
		func(requestsPerWindow int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
				return false
			}
			defer mr.Close()

			handler := newLimitedHandler(t, mr.Addr(), requestsPerWindow, time.Second)

			req := httptest.NewRequest("GET", "/api/products", nil)
			req.RemoteAddr = "192.168.1.101:4000"
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Header().Get("X-RateLimit-Limit") != "" &&
				w.Header().Get("X-RateLimit-Remaining") != ""
		},
		gen.IntRange(5, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
