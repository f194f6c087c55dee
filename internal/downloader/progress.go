package downloader

import (
	"sync"
	"time"
)

// tracker aggregates byte counts from concurrent chunks and invokes the
// progress callback at most once per progressInterval.
type tracker struct {
	mu         sync.Mutex
	downloaded int64
	total      int64
	started    time.Time
	lastReport time.Time
	progress   Progress
}

func newTracker(total int64, progress Progress) *tracker {
	now := time.Now()
	return &tracker{total: total, started: now, lastReport: now, progress: progress}
}

func (t *tracker) add(n int64) {
	if t.progress == nil {
		return
	}

	t.mu.Lock()
	t.downloaded += n
	now := time.Now()
	if now.Sub(t.lastReport) < progressInterval {
		t.mu.Unlock()
		return
	}
	t.lastReport = now
	downloaded := t.downloaded
	elapsed := now.Sub(t.started).Seconds()
	t.mu.Unlock()

	var speed float64
	if elapsed > 0 {
		speed = float64(downloaded) / elapsed
	}
	t.progress(downloaded, t.total, speed, eta(downloaded, t.total, speed))
}

func eta(downloaded, total int64, speed float64) time.Duration {
	if speed <= 0 || total <= downloaded {
		return 0
	}
	return time.Duration(float64(total-downloaded)/speed) * time.Second
}
