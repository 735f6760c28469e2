package annotate

// IntervalWriter receives annotation records in output order.
type IntervalWriter interface {
	WriteHeader() error
	Write(iv Interval) error
	Flush() error
}

// MultiWriter fans records out to several writers.
type MultiWriter struct {
	writers []IntervalWriter
}

// NewMultiWriter creates a writer that forwards to every w in order.
func NewMultiWriter(w ...IntervalWriter) *MultiWriter {
	return &MultiWriter{writers: w}
}

// WriteHeader writes the header of every writer.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write forwards iv to every writer, stopping at the first error.
func (m *MultiWriter) Write(iv Interval) error {
	for _, w := range m.writers {
		if err := w.Write(iv); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer.
func (m *MultiWriter) Flush() error {
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
