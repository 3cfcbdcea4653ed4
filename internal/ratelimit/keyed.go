package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const defaultMaxClients = 10000

// KeyedLimiter keeps one RateLimiter per client key. The least recently
// seen clients are evicted once maxClients is reached
type KeyedLimiter struct {
	name              string
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	mu      sync.Mutex
	clients *lru.Cache[string, *RateLimiter]
	now     func() time.Time
	log     *zap.Logger
}

// NewKeyedLimiter creates a per-client limiter
func NewKeyedLimiter(name string, requestsPerMinute, requestsPerHour int, enabled bool, log *zap.Logger) *KeyedLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	clients, err := lru.New[string, *RateLimiter](defaultMaxClients)
	if err != nil {
		panic(fmt.Sprintf("ratelimit: %v", err))
	}
	return &KeyedLimiter{
		name:              name,
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		clients:           clients,
		now:               time.Now,
		log:               log,
	}
}

// Allow checks and records one request for key
func (k *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	if !k.enabled {
		return true, 0
	}
	k.mu.Lock()
	limiter, ok := k.clients.Get(key)
	if !ok {
		limiter = NewRateLimiter(k.requestsPerMinute, k.requestsPerHour)
		k.clients.Add(key, limiter)
	}
	k.mu.Unlock()
	return limiter.Allow(k.now())
}

// Stats returns the window usage for key
func (k *KeyedLimiter) Stats(key string) Stats {
	k.mu.Lock()
	limiter, ok := k.clients.Peek(key)
	k.mu.Unlock()
	if !ok {
		limiter = NewRateLimiter(k.requestsPerMinute, k.requestsPerHour)
	}
	return limiter.GetStats(k.now())
}

// Prune drops clients with no activity in the last hour
func (k *KeyedLimiter) Prune() int {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()
	removed := 0
	for _, key := range k.clients.Keys() {
		if limiter, ok := k.clients.Peek(key); ok && limiter.Idle(now) {
			k.clients.Remove(key)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (k *KeyedLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		ok, wait := k.Allow(key)
		if !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			k.log.Warn("Rate limit exceeded",
				zap.String("limiter", k.name),
				zap.String("client_ip", key),
				zap.Int("retry_after_seconds", seconds))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
