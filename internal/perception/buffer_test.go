package perception

import (
	"testing"

	"movement-server/internal/models"
)

func TestFrontRange(t *testing.T) {
	b := NewBuffer()

	if _, ok := b.FrontRange(); ok {
		t.Fatalf("Expected no front range before any scan")
	}

	short := models.RangeScan{Ranges: make([]float64, 360)}
	b.Update(short)
	if _, ok := b.FrontRange(); ok {
		t.Errorf("Expected no front range for a 360-sample scan")
	}

	ranges := make([]float64, 720)
	ranges[360] = 1.25
	b.Update(models.RangeScan{Ranges: ranges})

	got, ok := b.FrontRange()
	if !ok || got != 1.25 {
		t.Errorf("Expected front range 1.25, got %f (ok=%v)", got, ok)
	}
	if b.Scans() != 2 {
		t.Errorf("Expected 2 scans, got %d", b.Scans())
	}
}

func TestLatestReturnsCopy(t *testing.T) {
	b := NewBuffer()
	b.Update(models.RangeScan{Ranges: []float64{1, 2, 3}})

	scan := b.Latest()
	scan.Ranges[0] = 99

	if b.Latest().Ranges[0] != 1 {
		t.Errorf("Expected buffer to be unaffected by caller mutation")
	}
}
