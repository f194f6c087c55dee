package downloader

import (
	"testing"
	"time"
)

func TestTrackerThrottle(t *testing.T) {
	var calls int
	tr := newTracker(1000, func(downloaded, total int64, speed float64, eta time.Duration) {
		calls++
		if total != 1000 {
			t.Errorf("total = %d", total)
		}
	})

	tr.add(100)
	if calls != 0 {
		t.Fatalf("expected throttled callback, got %d calls", calls)
	}

	tr.lastReport = time.Now().Add(-2 * progressInterval)
	tr.add(100)
	if calls != 1 {
		t.Fatalf("expected 1 call after interval, got %d", calls)
	}
}

func TestETA(t *testing.T) {
	if got := eta(500, 1000, 100); got != 5*time.Second {
		t.Fatalf("eta = %v", got)
	}
	if got := eta(1000, 1000, 100); got != 0 {
		t.Fatalf("eta at completion = %v", got)
	}
	if got := eta(0, 1000, 0); got != 0 {
		t.Fatalf("eta with zero speed = %v", got)
	}
}
