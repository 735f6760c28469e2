package duckdb

import "github.com/inodb/gffannot/internal/annotate"

const sinkBatchSize = 10000

// Sink adapts a Store to annotate.IntervalWriter, buffering rows for the
// appender.
type Sink struct {
	store *Store
	batch []annotate.Interval
}

// NewSink creates a sink writing to store.
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

// WriteHeader starts a new run by clearing previously stored intervals.
func (s *Sink) WriteHeader() error {
	return s.store.ClearIntervals()
}

// Write buffers iv and writes a full batch.
func (s *Sink) Write(iv annotate.Interval) error {
	s.batch = append(s.batch, iv)
	if len(s.batch) >= sinkBatchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes buffered intervals.
func (s *Sink) Flush() error {
	if err := s.store.WriteIntervals(s.batch); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	return nil
}
