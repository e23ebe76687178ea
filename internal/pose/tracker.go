// Package pose holds the latest orientation estimate shared between the pose handler and the sequencer.
package pose

import (
	"sync"
	"time"

	"movement-server/internal/models"
)

// Tracker latest-sample pose store. Single writer, many readers; no history is kept.
type Tracker struct {
	mu         sync.RWMutex
	current    models.Pose
	updates    uint64
	lastUpdate time.Time
	changed    chan struct{}
}

// NewTracker creates an empty tracker (yaw 0)
func NewTracker() *Tracker {
	return &Tracker{changed: make(chan struct{})}
}

// Update replaces the current pose; the most recent write wins
func (t *Tracker) Update(p models.Pose) {
	t.mu.Lock()
	t.current = p
	t.updates++
	t.lastUpdate = time.Now()
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()
}

// Changed returns a channel closed by the next Update. Grab it before reading the pose
// so a sample arriving in between is not missed.
func (t *Tracker) Changed() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changed
}

// Current returns a consistent snapshot of yaw, roll and pitch
func (t *Tracker) Current() models.Pose {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Yaw returns the latest normalized yaw
func (t *Tracker) Yaw() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.Yaw
}

// Updates number of samples received so far
func (t *Tracker) Updates() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updates
}

// LastUpdate time of the latest sample, zero if none arrived yet
func (t *Tracker) LastUpdate() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastUpdate
}
