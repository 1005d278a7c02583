package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps cheap process-wide counters for the HTTP surface and the
// calculation engine. Counters are atomics so handlers and the pay-run
// worker can record without coordination.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64

	calculations      uint64
	calculationErrors uint64
	payRuns           uint64
	payRunEmployees   uint64
	payRunFailures    uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordCalculation counts one employee pay calculation and whether it
// produced an error.
func (c *Collector) RecordCalculation(err error) {
	atomic.AddUint64(&c.calculations, 1)
	if err != nil {
		atomic.AddUint64(&c.calculationErrors, 1)
	}
}

// RecordPayRun counts one tenant-wide pay run and its per-employee outcomes.
func (c *Collector) RecordPayRun(processed, failed int) {
	atomic.AddUint64(&c.payRuns, 1)
	atomic.AddUint64(&c.payRunEmployees, uint64(processed))
	atomic.AddUint64(&c.payRunFailures, uint64(failed))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"calculationsTotal":      atomic.LoadUint64(&c.calculations),
		"calculationErrorsTotal": atomic.LoadUint64(&c.calculationErrors),
		"payRunsTotal":           atomic.LoadUint64(&c.payRuns),
		"payRunEmployeesTotal":   atomic.LoadUint64(&c.payRunEmployees),
		"payRunFailuresTotal":    atomic.LoadUint64(&c.payRunFailures),
	}
}
