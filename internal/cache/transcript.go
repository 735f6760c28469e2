package cache

import (
	"fmt"
	"sort"
)

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID       string // Transcript ID
	GeneID   string // Parent gene ID
	Chrom    string // Chromosome
	Start    int64  // Transcript start (0-based, inclusive)
	End      int64  // Transcript end (exclusive)
	Strand   Strand // Forward or Reverse
	Biotype  string // Transcript biotype (mRNA, ncRNA, ...)
	Exons    []Exon // Exons sorted by genomic position
	CDSStart int64  // CDS start (genomic, 0-based), equal to CDSEnd if non-coding
	CDSEnd   int64  // CDS end (genomic, exclusive)
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Exon number in genomic order (1-based)
	Start  int64 // Genomic start (0-based, inclusive)
	End    int64 // Genomic end (exclusive)
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSEnd > t.CDSStart
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == Forward
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == Reverse
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos < t.End
}

// ContainsCDS returns true if the given position is within the CDS boundaries.
func (t *Transcript) ContainsCDS(pos int64) bool {
	if !t.IsProteinCoding() {
		return false
	}
	return pos >= t.CDSStart && pos < t.CDSEnd
}

// Normalize sorts exons by position, drops empty exons and merges
// overlapping or touching exons. Exons are renumbered in genomic order.
// It returns a description of every repair made; an empty result means the
// exon structure was already well formed.
func (t *Transcript) Normalize() []string {
	var issues []string

	exons := t.Exons[:0]
	for _, e := range t.Exons {
		if e.End <= e.Start {
			issues = append(issues, fmt.Sprintf("transcript %s: dropped empty exon [%d,%d)", t.ID, e.Start, e.End))
			continue
		}
		exons = append(exons, e)
	}

	if !sort.SliceIsSorted(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start }) {
		issues = append(issues, fmt.Sprintf("transcript %s: exons not sorted by position", t.ID))
		sort.SliceStable(exons, func(i, j int) bool {
			if exons[i].Start != exons[j].Start {
				return exons[i].Start < exons[j].Start
			}
			return exons[i].End < exons[j].End
		})
	}

	merged := exons[:0]
	for _, e := range exons {
		n := len(merged)
		if n > 0 && e.Start <= merged[n-1].End {
			if e.Start < merged[n-1].End {
				issues = append(issues, fmt.Sprintf("transcript %s: overlapping exons at [%d,%d)", t.ID, e.Start, merged[n-1].End))
			}
			if e.End > merged[n-1].End {
				merged[n-1].End = e.End
			}
			continue
		}
		merged = append(merged, e)
	}
	for i := range merged {
		merged[i].Number = i + 1
	}
	t.Exons = merged

	return issues
}

// ExonExtent returns the span from the first exon start to the last exon end.
// ok is false when the transcript has no exons.
func (t *Transcript) ExonExtent() (start, end int64, ok bool) {
	if len(t.Exons) == 0 {
		return 0, 0, false
	}
	return t.Exons[0].Start, t.Exons[len(t.Exons)-1].End, true
}
