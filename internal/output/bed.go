// Package output provides interval output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gffannot/internal/annotate"
)

// BEDColumns are the columns written by BEDWriter.
var BEDColumns = []string{
	"#chrom",
	"start",
	"end",
	"feature",
	"gene",
	"strand",
	"note",
}

// BEDWriter writes intervals as tab-delimited, 0-based half-open BED rows.
type BEDWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewBEDWriter creates a new BED writer.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{
		w:       bufio.NewWriter(w),
		columns: BEDColumns,
	}
}

// WriteHeader writes the header line.
func (bw *BEDWriter) WriteHeader() error {
	_, err := bw.w.WriteString(strings.Join(bw.columns, "\t") + "\n")
	return err
}

// Write writes a single interval.
func (bw *BEDWriter) Write(iv annotate.Interval) error {
	values := []string{
		iv.Chrom,
		strconv.FormatInt(iv.Start, 10),
		strconv.FormatInt(iv.End, 10),
		string(iv.Feature),
		orDot(iv.GeneID),
		iv.Strand.String(),
		orDot(iv.Note),
	}

	_, err := bw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (bw *BEDWriter) Flush() error {
	return bw.w.Flush()
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
