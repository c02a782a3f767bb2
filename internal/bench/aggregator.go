package bench

import (
	"fmt"
	"io"
	"time"
)

// Run is the outcome of one execution attempt. Duration is only
// meaningful when OK; a failed run has no duration.
type Run struct {
	Duration time.Duration
	OK       bool
}

// RowWriter receives one finished job's record. Implemented by Sink.
type RowWriter interface {
	WriteRow(name string, runs []Run) error
}

type jobRecord struct {
	runs      []Run
	active    bool
	startedAt time.Time
}

// Aggregator is the single consumer of the progress bus. It owns the
// per-job table exclusively: every mutation happens in Drain's
// goroutine, so the table needs no locking.
type Aggregator struct {
	sink       RowWriter
	out        io.Writer
	iterations int
}

func NewAggregator(sink RowWriter, out io.Writer, iterations int) *Aggregator {
	return &Aggregator{
		sink:       sink,
		out:        out,
		iterations: iterations,
	}
}

// Drain consumes events until total jobs finished, reconstructing each
// job's run history and flushing it row by row. Any event the state
// machine cannot accept returns an ErrProtocol error naming the job
// and the offending kind; sink failures are returned as-is.
func (a *Aggregator) Drain(bus <-chan Event, total int) error {
	records := make(map[string]*jobRecord, total)
	completed := 0

	for completed < total {
		ev, ok := <-bus
		if !ok {
			return fmt.Errorf("%w: bus closed after %d of %d jobs", ErrProtocol, completed, total)
		}

		rec := records[ev.Job]
		switch ev.Kind {
		case JobStarted:
			if rec != nil {
				return a.violation(ev)
			}
			records[ev.Job] = &jobRecord{}
			fmt.Fprintf(a.out, "STARTING %s\n", ev.Job)

		case RunStarted:
			if rec == nil || rec.active {
				return a.violation(ev)
			}
			rec.active = true
			rec.startedAt = ev.At
			fmt.Fprintf(a.out, "%s run [%d/%d] started\n", ev.Job, len(rec.runs)+1, a.iterations)

		case RunFinished:
			if rec == nil || !rec.active {
				return a.violation(ev)
			}
			duration := ev.At.Sub(rec.startedAt)
			if duration < 0 {
				return fmt.Errorf("%w: job %s: RunFinished before its RunStarted", ErrProtocol, ev.Job)
			}
			rec.runs = append(rec.runs, Run{Duration: duration, OK: true})
			rec.active = false
			fmt.Fprintf(a.out, "%s run [%d/%d] finished after %.3fs\n",
				ev.Job, len(rec.runs), a.iterations, duration.Seconds())

		case RunFailed:
			if rec == nil || !rec.active {
				return a.violation(ev)
			}
			rec.runs = append(rec.runs, Run{})
			rec.active = false
			fmt.Fprintf(a.out, "%s run [%d/%d] FAILED\n", ev.Job, len(rec.runs), a.iterations)

		case JobFinished:
			if rec == nil {
				return a.violation(ev)
			}
			if err := a.sink.WriteRow(ev.Job, rec.runs); err != nil {
				return fmt.Errorf("writing row for %s: %w", ev.Job, err)
			}
			delete(records, ev.Job)
			completed++
			fmt.Fprintf(a.out, "COMPLETED [%d/%d] %s\n", completed, total, ev.Job)

		default:
			return a.violation(ev)
		}
	}
	return nil
}

func (a *Aggregator) violation(ev Event) error {
	return fmt.Errorf("%w: job %s: unexpected %s", ErrProtocol, ev.Job, ev.Kind)
}
