package bench_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proofbench/proofbench/internal/bench"
)

type row struct {
	name string
	runs []bench.Run
}

type rowRecorder struct {
	rows []row
	err  error
}

func (r *rowRecorder) WriteRow(name string, runs []bench.Run) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, row{name: name, runs: append([]bench.Run(nil), runs...)})
	return nil
}

func feed(events []bench.Event) <-chan bench.Event {
	bus := make(chan bench.Event, len(events))
	for _, ev := range events {
		bus <- ev
	}
	close(bus)
	return bus
}

func TestAggregator(t *testing.T) {
	t.Parallel()
	base := time.Now()
	at := func(d time.Duration) time.Time { return base.Add(d) }

	t.Run("durations and rows", func(t *testing.T) {
		events := []bench.Event{
			{Job: "a", At: at(0), Kind: bench.JobStarted},
			{Job: "b", At: at(0), Kind: bench.JobStarted},
			{Job: "a", At: at(10 * time.Millisecond), Kind: bench.RunStarted},
			{Job: "b", At: at(10 * time.Millisecond), Kind: bench.RunStarted},
			{Job: "a", At: at(1510 * time.Millisecond), Kind: bench.RunFinished},
			{Job: "a", At: at(2 * time.Second), Kind: bench.RunStarted},
			{Job: "b", At: at(2 * time.Second), Kind: bench.RunFailed},
			{Job: "b", At: at(2 * time.Second), Kind: bench.RunStarted},
			{Job: "a", At: at(2250 * time.Millisecond), Kind: bench.RunFinished},
			{Job: "a", At: at(3 * time.Second), Kind: bench.JobFinished},
			{Job: "b", At: at(2900 * time.Millisecond), Kind: bench.RunFinished},
			{Job: "b", At: at(3 * time.Second), Kind: bench.JobFinished},
		}
		sink := &rowRecorder{}
		var out bytes.Buffer
		err := bench.NewAggregator(sink, &out, 2).Drain(feed(events), 2)
		require.NoError(t, err)

		require.Len(t, sink.rows, 2)
		require.Equal(t, "a", sink.rows[0].name)
		require.Equal(t, []bench.Run{
			{Duration: 1500 * time.Millisecond, OK: true},
			{Duration: 250 * time.Millisecond, OK: true},
		}, sink.rows[0].runs)
		require.Equal(t, "b", sink.rows[1].name)
		require.Equal(t, []bench.Run{
			{},
			{Duration: 900 * time.Millisecond, OK: true},
		}, sink.rows[1].runs)

		progress := out.String()
		require.Contains(t, progress, "STARTING a\n")
		require.Contains(t, progress, "a run [1/2] started\n")
		require.Contains(t, progress, "a run [1/2] finished after 1.500s\n")
		require.Contains(t, progress, "b run [1/2] FAILED\n")
		require.Contains(t, progress, "COMPLETED [1/2] a\n")
		require.Contains(t, progress, "COMPLETED [2/2] b\n")
	})

	t.Run("protocol violations are fatal", func(t *testing.T) {
		tests := []struct {
			name   string
			events []bench.Event
		}{
			{"run started before job", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.RunStarted},
			}},
			{"duplicate job started", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobStarted},
				{Job: "a", At: at(0), Kind: bench.JobStarted},
			}},
			{"double run started", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobStarted},
				{Job: "a", At: at(0), Kind: bench.RunStarted},
				{Job: "a", At: at(0), Kind: bench.RunStarted},
			}},
			{"finish without start", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobStarted},
				{Job: "a", At: at(0), Kind: bench.RunFinished},
			}},
			{"fail without start", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobStarted},
				{Job: "a", At: at(0), Kind: bench.RunFailed},
			}},
			{"finish of unknown job", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobFinished},
			}},
			{"time going backwards", []bench.Event{
				{Job: "a", At: at(0), Kind: bench.JobStarted},
				{Job: "a", At: at(time.Second), Kind: bench.RunStarted},
				{Job: "a", At: at(0), Kind: bench.RunFinished},
			}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				sink := &rowRecorder{}
				var out bytes.Buffer
				err := bench.NewAggregator(sink, &out, 1).Drain(feed(tc.events), 1)
				require.ErrorIs(t, err, bench.ErrProtocol)
			})
		}
	})

	t.Run("violation names job and kind", func(t *testing.T) {
		events := []bench.Event{
			{Job: "aws_array_eq", At: at(0), Kind: bench.RunStarted},
		}
		err := bench.NewAggregator(&rowRecorder{}, &bytes.Buffer{}, 1).Drain(feed(events), 1)
		require.ErrorIs(t, err, bench.ErrProtocol)
		require.ErrorContains(t, err, "aws_array_eq")
		require.ErrorContains(t, err, "RunStarted")
	})

	t.Run("bus closing early is a violation", func(t *testing.T) {
		events := []bench.Event{
			{Job: "a", At: at(0), Kind: bench.JobStarted},
		}
		err := bench.NewAggregator(&rowRecorder{}, &bytes.Buffer{}, 1).Drain(feed(events), 1)
		require.ErrorIs(t, err, bench.ErrProtocol)
	})

	t.Run("sink error surfaces", func(t *testing.T) {
		sinkErr := errors.New("disk full")
		events := []bench.Event{
			{Job: "a", At: at(0), Kind: bench.JobStarted},
			{Job: "a", At: at(0), Kind: bench.RunStarted},
			{Job: "a", At: at(time.Second), Kind: bench.RunFinished},
			{Job: "a", At: at(time.Second), Kind: bench.JobFinished},
		}
		err := bench.NewAggregator(&rowRecorder{err: sinkErr}, &bytes.Buffer{}, 1).Drain(feed(events), 1)
		require.ErrorIs(t, err, sinkErr)
	})

	t.Run("stops at total, ignores the rest", func(t *testing.T) {
		events := []bench.Event{
			{Job: "a", At: at(0), Kind: bench.JobStarted},
			{Job: "a", At: at(0), Kind: bench.JobFinished},
			{Job: "b", At: at(0), Kind: bench.JobStarted},
		}
		sink := &rowRecorder{}
		err := bench.NewAggregator(sink, &bytes.Buffer{}, 0).Drain(feed(events), 1)
		require.NoError(t, err)
		require.Len(t, sink.rows, 1)
	})
}
