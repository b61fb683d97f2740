package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64

	savesTotal     uint64
	saveConflicts  uint64
	saveSkips      uint64
	saveFailures   uint64
	detectionsRun  uint64
	sessionsOpened uint64
}

func New() *Collector {
	return &Collector{}
}

// All recorders tolerate a nil receiver so callers can hold a disabled
// collector without guarding every call site.
func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordSave counts one auto-save outcome by kind.
func (c *Collector) RecordSave(kind string) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.savesTotal, 1)
	switch kind {
	case "conflict":
		atomic.AddUint64(&c.saveConflicts, 1)
	case "skipped":
		atomic.AddUint64(&c.saveSkips, 1)
	case "failed":
		atomic.AddUint64(&c.saveFailures, 1)
	}
}

func (c *Collector) RecordDetection() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.detectionsRun, 1)
}

func (c *Collector) RecordSessionOpened() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.sessionsOpened, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":  total,
		"errorsTotal":    errs,
		"avgDurationMs":  avg,
		"savesTotal":     atomic.LoadUint64(&c.savesTotal),
		"saveConflicts":  atomic.LoadUint64(&c.saveConflicts),
		"saveSkips":      atomic.LoadUint64(&c.saveSkips),
		"saveFailures":   atomic.LoadUint64(&c.saveFailures),
		"detectionsRun":  atomic.LoadUint64(&c.detectionsRun),
		"sessionsOpened": atomic.LoadUint64(&c.sessionsOpened),
	}
}
