package utils

import (
	"sync"
	"time"
)

// StatusCache remembers the last published status per key to skip redundant writes
type StatusCache struct {
	mu        sync.RWMutex
	statusMap map[string]*StatusEntry
	heartbeat time.Duration
}

// StatusEntry cache entry
type StatusEntry struct {
	Status   string
	LastSent time.Time
}

// NewStatusCache creates a cache that forces a resend after heartbeat even when nothing changed
func NewStatusCache(heartbeat time.Duration) *StatusCache {
	return &StatusCache{
		statusMap: make(map[string]*StatusEntry),
		heartbeat: heartbeat,
	}
}

// ShouldUpdate reports whether newStatus differs from the last sent one or the heartbeat elapsed
func (c *StatusCache) ShouldUpdate(key string, newStatus string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.statusMap[key]
	if !exists {
		return true
	}
	if entry.Status != newStatus {
		return true
	}
	return time.Since(entry.LastSent) > c.heartbeat
}

// Update records newStatus as sent
func (c *StatusCache) Update(key string, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if entry, exists := c.statusMap[key]; exists {
		entry.Status = status
		entry.LastSent = now
		return
	}
	c.statusMap[key] = &StatusEntry{
		Status:   status,
		LastSent: now,
	}
}

// Remove forgets key so the next update is always sent
func (c *StatusCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statusMap, key)
}

// RateLimiter enforces a minimum interval between sends per key
type RateLimiter struct {
	mu          sync.Mutex
	lastSent    map[string]time.Time
	minInterval time.Duration
}

// NewRateLimiter creates a rate limiter
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		lastSent:    make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether a send for key is allowed now and records it if so
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if lastTime, exists := r.lastSent[key]; exists && now.Sub(lastTime) < r.minInterval {
		return false
	}

	r.lastSent[key] = now
	return true
}

// Reset clears the limit for key
func (r *RateLimiter) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastSent, key)
}
