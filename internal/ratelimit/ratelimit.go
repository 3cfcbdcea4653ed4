package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter enforces per-minute and per-hour sliding windows for one client
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int

	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a limiter. A zero limit disables that window
func NewRateLimiter(requestsPerMinute, requestsPerHour int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
	}
}

// Allow records a request at now if it fits in both windows. When it does
// not, the returned duration is how long until a slot frees up
func (rl *RateLimiter) Allow(now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)

	if rl.requestsPerMinute > 0 && len(rl.minuteWindow) >= rl.requestsPerMinute {
		return false, rl.minuteWindow[0].Add(time.Minute).Sub(now)
	}
	if rl.requestsPerHour > 0 && len(rl.hourWindow) >= rl.requestsPerHour {
		return false, rl.hourWindow[0].Add(time.Hour).Sub(now)
	}

	rl.minuteWindow = append(rl.minuteWindow, now)
	rl.hourWindow = append(rl.hourWindow, now)
	return true, 0
}

// Idle reports whether the limiter holds no requests newer than an hour
func (rl *RateLimiter) Idle(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanup(now)
	return len(rl.hourWindow) == 0
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.minuteWindow = filterTimes(rl.minuteWindow, now.Add(-time.Minute))
	rl.hourWindow = filterTimes(rl.hourWindow, now.Add(-time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats(now time.Time) Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanup(now)

	return Stats{
		RequestsLastMinute:  len(rl.minuteWindow),
		RequestsLastHour:    len(rl.hourWindow),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		RemainingThisMinute: max(0, rl.requestsPerMinute-len(rl.minuteWindow)),
		RemainingThisHour:   max(0, rl.requestsPerHour-len(rl.hourWindow)),
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	RequestsLastMinute  int `json:"requests_last_minute"`
	RequestsLastHour    int `json:"requests_last_hour"`
	LimitPerMinute      int `json:"limit_per_minute"`
	LimitPerHour        int `json:"limit_per_hour"`
	RemainingThisMinute int `json:"remaining_this_minute"`
	RemainingThisHour   int `json:"remaining_this_hour"`
}
