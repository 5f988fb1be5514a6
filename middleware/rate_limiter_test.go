package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within burst", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestAllowIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestNewRateLimiterClampsBadInputs(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestEvictStaleDropsQuietClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastSeen = time.Now().Add(-staleAfter - time.Minute)
	rl.evictStale(time.Now())
	_, stalePresent := rl.clients["10.0.0.1"]
	_, recentPresent := rl.clients["10.0.0.2"]
	rl.mu.Unlock()

	assert.False(t, stalePresent)
	assert.True(t, recentPresent)
}

func TestMiddlewareRejectsOverBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewRateLimiter(60, 2).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	last := httptest.NewRecorder()
	r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Contains(t, last.Body.String(), "Rate limit exceeded")
}
