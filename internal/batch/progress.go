package batch

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultProgressInterval    = 5 * time.Second
	defaultProgressPercentStep = int64(10)
)

// ProgressLogger logs batch progress at most once per Interval unless the
// run advanced by at least PercentStep percent. The first and last updates
// always log.
type ProgressLogger struct {
	Logger      *slog.Logger
	Interval    time.Duration
	PercentStep int64
	Now         func() time.Time

	mu          sync.Mutex
	lastAt      time.Time
	lastPercent int64
}

// Report has the WithProgress callback signature.
func (p *ProgressLogger) Report(done, total int64) {
	if total <= 0 {
		return
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	if !p.shouldLog(now, done, total) {
		return
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("batch progress", "assessed", done, "total", total, "percent", progressPercent(done, total))
}

func (p *ProgressLogger) shouldLog(now time.Time, done, total int64) bool {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	step := p.PercentStep
	if step <= 0 {
		step = defaultProgressPercentStep
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	percent := progressPercent(done, total)
	first := p.lastAt.IsZero()
	if !first && done < total && now.Sub(p.lastAt) < interval && percent < p.lastPercent+step {
		return false
	}
	p.lastAt = now
	p.lastPercent = (percent / step) * step
	return true
}

func progressPercent(current, total int64) int64 {
	if total <= 0 || current <= 0 {
		return 0
	}
	if current >= total {
		return 100
	}
	return (current * 100) / total
}
