package display

import "time"

// Metrics receives reconciliation counters. metrics.Recorder implements it.
type Metrics interface {
	MarkersCreated(n int)
	MarkersRemoved(n int)
	FilterApplied(visible int)
	MarkerActivated(found bool)
}

type nopMetrics struct{}

func (nopMetrics) MarkersCreated(int)   {}
func (nopMetrics) MarkersRemoved(int)   {}
func (nopMetrics) FilterApplied(int)    {}
func (nopMetrics) MarkerActivated(bool) {}

// Scheduler runs fn after d on the same goroutine that drives the Sync. The
// returned func cancels a pending call.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}
