// Package queue implements a generic work queue that keeps track of the
// outcome of every processed item, used to account for batches of commands.
package queue

import "time"

// Decision is the outcome of processing one item.
type Decision int

const (
	// DecisionSuccess is returned by a processFunc when an item was processed.
	DecisionSuccess Decision = 1

	// DecisionSkipped is returned by a processFunc when an item was skipped.
	DecisionSkipped Decision = 0
)

// Progress is a snapshot of the accounting of a [GenericQueue].
type Progress struct {
	HasStarted      bool
	HasFinished     bool
	StartTime       time.Time
	FinishTime      time.Time
	TotalItems      int
	ProcessedItems  int
	InProgressItems int
	SuccessItems    int
	SkippedItems    int
}

// Elapsed returns the time spent processing so far, or in total once the
// queue has finished.
func (p Progress) Elapsed() time.Duration {
	switch {
	case !p.HasStarted:
		return 0
	case p.HasFinished:
		return p.FinishTime.Sub(p.StartTime)
	default:
		return time.Since(p.StartTime)
	}
}

// ProgressPct returns the share of processed items in percent.
func (p Progress) ProgressPct() float64 {
	if p.TotalItems == 0 {
		return 0
	}

	return float64(p.ProcessedItems) / float64(p.TotalItems) * 100 //nolint:mnd
}
