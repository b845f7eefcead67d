package mapper

import (
	"sync"
	"testing"
)

func TestCalibration_RecalibrateOverwrites(t *testing.T) {
	c := NewCalibration(0.1)
	if c.Offset() != 0.1 {
		t.Errorf("initial offset: got %v, want 0.1", c.Offset())
	}

	c.Recalibrate(0.25)
	if c.Offset() != 0.25 {
		t.Errorf("offset after recalibrate: got %v, want 0.25", c.Offset())
	}

	// Overwrite, not accumulate.
	c.Recalibrate(-0.05)
	if c.Offset() != -0.05 {
		t.Errorf("offset after second recalibrate: got %v, want -0.05", c.Offset())
	}
}

func TestCalibration_ConcurrentAccess(t *testing.T) {
	c := NewCalibration(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(val float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Recalibrate(val)
			}
		}(float64(i) * 0.1)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Offset()
			}
		}()
	}
	wg.Wait()

	// Observed value must be one of the written values, never torn.
	got := c.Offset()
	valid := false
	for i := 0; i < 10; i++ {
		if near(got, float64(i)*0.1) {
			valid = true
			break
		}
	}
	if !valid {
		t.Errorf("offset %v is not any written value", got)
	}
}
