package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"github.com/inodb/gffannot/internal/annotate"
	"github.com/inodb/gffannot/internal/cache"
)

// GFFSource is the source column of written GFF records.
const GFFSource = "gffannot"

// GFFWriter writes intervals as GFF records with gene_id and note attributes.
type GFFWriter struct {
	buf *bufio.Writer
	w   *gff.Writer
}

// NewGFFWriter creates a new GFF writer.
func NewGFFWriter(w io.Writer) *GFFWriter {
	buf := bufio.NewWriter(w)
	return &GFFWriter{
		buf: buf,
		w:   gff.NewWriter(buf, 60, false),
	}
}

// WriteHeader writes the version pragma.
func (gw *GFFWriter) WriteHeader() error {
	_, err := gw.buf.WriteString("##gff-version 2\n")
	return err
}

// Write writes a single interval.
func (gw *GFFWriter) Write(iv annotate.Interval) error {
	f := &gff.Feature{
		SeqName:    iv.Chrom,
		Source:     GFFSource,
		Feature:    string(iv.Feature),
		FeatStart:  int(iv.Start),
		FeatEnd:    int(iv.End),
		FeatStrand: toSeqStrand(iv.Strand),
		FeatFrame:  gff.NoFrame,
	}
	if iv.GeneID != "" {
		f.FeatAttributes = append(f.FeatAttributes, gff.Attribute{Tag: "gene_id", Value: strconv.Quote(iv.GeneID)})
	}
	if iv.Note != "" {
		f.FeatAttributes = append(f.FeatAttributes, gff.Attribute{Tag: "note", Value: strconv.Quote(iv.Note)})
	}
	_, err := gw.w.Write(f)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GFFWriter) Flush() error {
	return gw.buf.Flush()
}

func toSeqStrand(s cache.Strand) seq.Strand {
	switch s {
	case cache.Forward:
		return seq.Plus
	case cache.Reverse:
		return seq.Minus
	}
	return seq.None
}
