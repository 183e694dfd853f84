package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, wait := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, wait, "one request regained every window/limit")

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(30 * time.Second)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a rejected request does not consume the bucket")
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	assert.Len(t, rl.clients, 1, "idle keys are swept")
}

func TestRateLimiter_NonPositiveLimit(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(1, time.Minute)))
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := serve(router, httptest.NewRequest(http.MethodPost, "/login", nil))
	second := serve(router, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	retry := second.Header().Get("Retry-After")
	assert.Contains(t, []string{"59", "60"}, retry)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
