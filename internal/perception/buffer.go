package perception

import (
	"sync"

	"movement-server/internal/common/constants"
	"movement-server/internal/models"
)

// Buffer latest range scan. Stored for observers only; control logic never reads it.
type Buffer struct {
	mu     sync.RWMutex
	latest models.RangeScan
	scans  uint64
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Update(scan models.RangeScan) {
	b.mu.Lock()
	b.latest = scan
	b.scans++
	b.mu.Unlock()
}

// Latest returns a copy of the last scan
func (b *Buffer) Latest() models.RangeScan {
	b.mu.RLock()
	defer b.mu.RUnlock()

	scan := b.latest
	scan.Ranges = append([]float64(nil), b.latest.Ranges...)
	return scan
}

// FrontRange reading straight ahead; false when no scan long enough has arrived
func (b *Buffer) FrontRange() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.latest.Ranges) <= constants.FrontLaserIndex {
		return 0, false
	}
	return b.latest.Ranges[constants.FrontLaserIndex], true
}

func (b *Buffer) Scans() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scans
}
