package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Sink appends one CSV row per finished job, in completion order. Rows
// are flushed as they are written, so a crashed batch still leaves a
// valid file with every job that finished before the crash. No header.
type Sink struct {
	f *os.File
	w *csv.Writer
}

func OpenSink(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv output %s: %w", path, err)
	}
	return &Sink{f: f, w: csv.NewWriter(f)}, nil
}

// WriteRow writes name plus one field per run in run order: seconds as
// a decimal on success, empty on failure.
func (s *Sink) WriteRow(name string, runs []Run) error {
	record := make([]string, 0, len(runs)+1)
	record = append(record, name)
	for _, run := range runs {
		if run.OK {
			record = append(record, strconv.FormatFloat(run.Duration.Seconds(), 'f', -1, 64))
		} else {
			record = append(record, "")
		}
	}
	if err := s.w.Write(record); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *Sink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
