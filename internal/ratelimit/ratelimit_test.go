package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMinuteWindow(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	ok, _ := rl.Allow(start)
	assert.True(t, ok)
	ok, _ = rl.Allow(start.Add(10 * time.Second))
	assert.True(t, ok)

	ok, wait := rl.Allow(start.Add(20 * time.Second))
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	ok, _ = rl.Allow(start.Add(61 * time.Second))
	assert.True(t, ok)
}

func TestRateLimiterHourWindow(t *testing.T) {
	rl := NewRateLimiter(0, 3)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow(start.Add(time.Duration(i) * 5 * time.Minute))
		require.True(t, ok)
	}
	ok, wait := rl.Allow(start.Add(30 * time.Minute))
	assert.False(t, ok)
	assert.Equal(t, 30*time.Minute, wait)

	stats := rl.GetStats(start.Add(30 * time.Minute))
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RemainingThisHour)
}

func TestKeyedLimiterSeparatesClients(t *testing.T) {
	k := NewKeyedLimiter("test", 1, 0, true, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return now }

	ok, _ := k.Allow("a")
	assert.True(t, ok)
	ok, _ = k.Allow("a")
	assert.False(t, ok)
	ok, _ = k.Allow("b")
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 2, k.Prune())
}

func TestKeyedLimiterDisabled(t *testing.T) {
	k := NewKeyedLimiter("test", 1, 1, false, nil)
	for i := 0; i < 5; i++ {
		ok, _ := k.Allow("a")
		assert.True(t, ok)
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	k := NewKeyedLimiter("leads", 1, 0, true, nil)
	r := gin.New()
	r.POST("/leads", k.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leads", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leads", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
