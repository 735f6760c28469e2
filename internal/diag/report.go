// Package diag collects non-fatal problems found while loading and
// annotating gene models.
package diag

import (
	"fmt"

	"go.uber.org/zap"
)

// Severity classifies a diagnostic entry.
type Severity int

const (
	// Warning marks a problem that was repaired locally (clipping, sorting).
	Warning Severity = iota
	// Error marks data that was dropped (unknown chromosome, empty gene).
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Entry is a single diagnostic.
type Entry struct {
	Severity Severity
	Chrom    string
	GeneID   string
	Message  string
}

func (e Entry) String() string {
	switch {
	case e.GeneID != "":
		return fmt.Sprintf("%s: %s %s: %s", e.Severity, e.Chrom, e.GeneID, e.Message)
	case e.Chrom != "":
		return fmt.Sprintf("%s: %s: %s", e.Severity, e.Chrom, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// Report accumulates diagnostics. The zero value is ready to use.
// A Report is not safe for concurrent use; parallel workers each fill
// their own and the caller merges them.
type Report struct {
	entries []Entry
}

// Warn records a warning.
func (r *Report) Warn(chrom, geneID, format string, args ...any) {
	r.add(Warning, chrom, geneID, format, args...)
}

// Error records an error.
func (r *Report) Error(chrom, geneID, format string, args ...any) {
	r.add(Error, chrom, geneID, format, args...)
}

func (r *Report) add(sev Severity, chrom, geneID, format string, args ...any) {
	r.entries = append(r.entries, Entry{
		Severity: sev,
		Chrom:    chrom,
		GeneID:   geneID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all entries of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.entries = append(r.entries, other.entries...)
}

// Entries returns all recorded diagnostics in insertion order.
func (r *Report) Entries() []Entry {
	return r.entries
}

// Len returns the number of recorded diagnostics.
func (r *Report) Len() int {
	return len(r.entries)
}

// Count returns the number of entries with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, e := range r.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Log writes every entry to l at warn or error level.
func (r *Report) Log(l *zap.Logger) {
	for _, e := range r.entries {
		fields := []zap.Field{zap.String("chrom", e.Chrom)}
		if e.GeneID != "" {
			fields = append(fields, zap.String("gene", e.GeneID))
		}
		if e.Severity == Error {
			l.Error(e.Message, fields...)
		} else {
			l.Warn(e.Message, fields...)
		}
	}
}
