package bench

import (
	"time"
)

// Kind is the lifecycle stage an Event reports.
type Kind int

const (
	JobStarted Kind = iota
	RunStarted
	RunFinished
	RunFailed
	JobFinished
)

func (k Kind) String() string {
	switch k {
	case JobStarted:
		return "JobStarted"
	case RunStarted:
		return "RunStarted"
	case RunFinished:
		return "RunFinished"
	case RunFailed:
		return "RunFailed"
	case JobFinished:
		return "JobFinished"
	default:
		return "Unknown"
	}
}

// Event is one lifecycle message from a job executor to the
// aggregator. Events of a single job are sent from one goroutine, so
// they arrive in emission order; no ordering holds across jobs.
type Event struct {
	Job  string
	At   time.Time
	Kind Kind
}

// EventCount is the exact number of events a batch of jobs produces:
// JobStarted + JobFinished per job and a start plus finish-or-fail
// pair per run.
func EventCount(jobs, iterations int) int {
	return jobs * (2 + 2*iterations)
}

// NewBus returns the progress channel for a batch, sized for every
// event the batch can produce. Sends never block, so an executor can
// not stall on a slow or already-stopped consumer.
func NewBus(jobs, iterations int) chan Event {
	return make(chan Event, EventCount(jobs, iterations))
}
