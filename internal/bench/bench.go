// Package bench is the core of proofbench: the bounded-concurrency
// scheduler, the lifecycle event protocol between its executors and
// the single timing aggregator, and the CSV sink the aggregator
// flushes finished jobs into.
package bench

import (
	"context"
	"io"

	"github.com/proofbench/proofbench/internal/discover"
)

// Benchmark runs the whole batch: the scheduler executes proofs
// concurrently while the aggregator drains their events on this
// goroutine. It returns once every proof reported JobFinished, or with
// the first protocol or sink error. Progress lines go to out.
func Benchmark(ctx context.Context, s *Scheduler, proofs []discover.Proof, sink RowWriter, out io.Writer) error {
	bus := NewBus(len(proofs), s.Iterations)
	go s.Run(ctx, proofs, bus)
	return NewAggregator(sink, out, s.Iterations).Drain(bus, len(proofs))
}
