package annotate

import (
	"errors"

	"github.com/inodb/gffannot/internal/cache"
)

const testChrom = "chr1"

var errWriteFailed = errors.New("write failed")

// tx builds a transcript from exon pairs; cds is [start, end) or empty.
func tx(id string, cds [2]int64, exons ...[2]int64) *cache.Transcript {
	t := &cache.Transcript{ID: id, CDSStart: cds[0], CDSEnd: cds[1]}
	for i, e := range exons {
		t.Exons = append(t.Exons, cache.Exon{Number: i + 1, Start: e[0], End: e[1]})
	}
	if len(exons) > 0 {
		t.Start, t.End = exons[0][0], exons[len(exons)-1][1]
	}
	return t
}

func gene(id string, start, end int64, strand cache.Strand, txs ...*cache.Transcript) *cache.Gene {
	g := &cache.Gene{ID: id, Chrom: testChrom, Start: start, End: end, Strand: strand, Transcripts: txs}
	for _, t := range txs {
		t.GeneID, t.Chrom, t.Strand = id, testChrom, strand
	}
	return g
}

func iv(start, end int64, f Feature, geneID string, strand cache.Strand) Interval {
	return Interval{Chrom: testChrom, Start: start, End: end, Feature: f, Strand: strand, GeneID: geneID}
}

func intergenic(start, end int64) Interval {
	return Interval{Chrom: testChrom, Start: start, End: end, Feature: FeatureIntergenic}
}

func noCDS() [2]int64 { return [2]int64{} }

type collectWriter struct {
	headers int
	records []Interval
	flushed bool
	failAt  int
}

func (w *collectWriter) WriteHeader() error {
	w.headers++
	return nil
}

func (w *collectWriter) Write(iv Interval) error {
	if w.failAt > 0 && len(w.records)+1 == w.failAt {
		return errWriteFailed
	}
	w.records = append(w.records, iv)
	return nil
}

func (w *collectWriter) Flush() error {
	w.flushed = true
	return nil
}
