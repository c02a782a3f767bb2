package bench

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/proofbench/proofbench/internal/discover"
)

// Scheduler executes every proof Iterations times with at most
// Parallel proofs in flight. A slot is held for the whole lifetime of
// a proof, all its runs included, and is freed the moment the proof's
// last run ends, successful or not.
type Scheduler struct {
	Invoker    Invoker
	Parallel   int
	Iterations int
	Prepare    []string // untimed make targets run before every timed run
	Target     string   // the timed make target
}

// Run executes all proofs, emitting lifecycle events onto bus, and
// closes bus once the last job finished. The concurrency bound is the
// errgroup limit: Go blocks until a slot frees, so undispatched proofs
// simply queue here. Run failures are events, not errors; Run itself
// cannot fail.
func (s *Scheduler) Run(ctx context.Context, proofs []discover.Proof, bus chan<- Event) {
	defer close(bus)

	g := &errgroup.Group{}
	g.SetLimit(s.Parallel)
	for _, proof := range proofs {
		g.Go(func() error {
			s.runJob(ctx, proof, bus)
			return nil
		})
	}
	_ = g.Wait()
}

// runJob carries one proof through all its runs. Event order per job
// is fixed: JobStarted, then per iteration RunStarted followed by
// RunFinished or RunFailed, then JobFinished. All events of a job are
// emitted from this one goroutine, which is what gives the aggregator
// its per-job FIFO.
func (s *Scheduler) runJob(ctx context.Context, proof discover.Proof, bus chan<- Event) {
	bus <- Event{Job: proof.Name, At: time.Now(), Kind: JobStarted}

	for i := 1; i <= s.Iterations; i++ {
		prepErr := s.prepare(ctx, proof.Dir)

		bus <- Event{Job: proof.Name, At: time.Now(), Kind: RunStarted}

		err := prepErr
		if err == nil {
			err = s.Invoker.Run(ctx, proof.Dir, s.Target)
		}
		if err != nil {
			slog.DebugContext(ctx, "run failed",
				"proof", proof.Name, "iteration", i, "error", err)
			bus <- Event{Job: proof.Name, At: time.Now(), Kind: RunFailed}
			continue
		}
		bus <- Event{Job: proof.Name, At: time.Now(), Kind: RunFinished}
	}

	bus <- Event{Job: proof.Name, At: time.Now(), Kind: JobFinished}
}

// prepare runs the untimed targets. A preparation failure fails the
// upcoming run; the timed target is not attempted on a half-prepared
// directory.
func (s *Scheduler) prepare(ctx context.Context, dir string) error {
	for _, target := range s.Prepare {
		if err := s.Invoker.Run(ctx, dir, target); err != nil {
			return err
		}
	}
	return nil
}
