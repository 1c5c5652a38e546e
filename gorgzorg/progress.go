package gorgzorg

import (
	"fmt"
	"time"
)

// ProgressTracker accumulates per-session transfer statistics and feeds the
// OnProgress callback.
type ProgressTracker struct {
	path        string
	transferred int64
	total       int64
	startTime   time.Time
	lastUpdate  time.Time

	callback func(string, int64, int64)
	interval time.Duration
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(callback func(string, int64, int64), interval time.Duration) *ProgressTracker {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &ProgressTracker{
		callback: callback,
		interval: interval,
	}
}

// Start begins tracking a new item.
func (pt *ProgressTracker) Start(path string, total int64) {
	pt.path = path
	pt.total = total
	pt.transferred = 0
	pt.startTime = time.Now()
	pt.lastUpdate = pt.startTime
}

// Add records n more transferred bytes and invokes the callback if enough
// time has passed since the last update.
func (pt *ProgressTracker) Add(n int64) {
	pt.transferred += n

	now := time.Now()
	if now.Sub(pt.lastUpdate) < pt.interval {
		return
	}
	if pt.callback != nil {
		pt.callback(pt.path, pt.transferred, pt.total)
	}
	pt.lastUpdate = now
}

// Complete marks the item done and returns the elapsed duration.
func (pt *ProgressTracker) Complete() time.Duration {
	if pt.callback != nil {
		pt.callback(pt.path, pt.transferred, pt.total)
	}
	return time.Since(pt.startTime)
}

// FormatSize renders a byte count the way the prompt and statistics display
// it: MB to two decimals for sizes of a GiB and up, otherwise KB.
func FormatSize(size int64) string {
	if size >= 1<<30 {
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	}
	return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
}

// throughput renders bytes over a duration as MB/s.
func throughput(bytes int64, d time.Duration) string {
	secs := d.Seconds()
	if secs <= 0 {
		secs = 1e-9
	}
	return fmt.Sprintf("%.2f MB/s", float64(bytes)/(1<<20)/secs)
}
