package annotate

import (
	"sort"

	"github.com/inodb/gffannot/internal/cache"
	"github.com/inodb/gffannot/internal/diag"
)

// exonModel is one transcript reduced to what painting needs.
type exonModel struct {
	exons    []cache.Exon
	cdsStart int64
	cdsEnd   int64
	coding   bool
}

// label returns the feature of the exonic or intronic segment starting at pos.
func (m *exonModel) label(pos int64, forward bool) Feature {
	i := sort.Search(len(m.exons), func(i int) bool { return m.exons[i].End > pos })
	if i == len(m.exons) || m.exons[i].Start > pos {
		return FeatureIntron
	}
	if !m.coding {
		return FeatureUTR5
	}
	switch {
	case pos >= m.cdsStart && pos < m.cdsEnd:
		return FeatureCDS
	case (pos < m.cdsStart) == forward:
		return FeatureUTR5
	default:
		return FeatureUTR3
	}
}

// ResolveGene labels every base of [g.Start, g.End) as CDS, UTR5, UTR3 or
// intron. Transcripts are combined by priority: a base that is CDS in any
// transcript is CDS, then UTR5, then UTR3, and bases outside every exon are
// intronic. Exons must already be sorted and non-overlapping.
//
// CDS spans reaching past the exons are clipped; a CDS that then covers no
// exonic base makes the transcript non-coding. Both cases are reported to rep.
func ResolveGene(g *cache.Gene, rep *diag.Report) []Interval {
	if g.End <= g.Start {
		return nil
	}
	models := exonModels(g, rep)
	forward := !g.IsReverseStrand()

	bounds := []int64{g.Start, g.End}
	for _, m := range models {
		for _, e := range m.exons {
			bounds = append(bounds, e.Start, e.End)
		}
		if m.coding {
			bounds = append(bounds, m.cdsStart, m.cdsEnd)
		}
	}
	bounds = uniqueSorted(bounds, g.Start, g.End)

	var out []Interval
	for k := 0; k+1 < len(bounds); k++ {
		x, y := bounds[k], bounds[k+1]
		best := Interval{Chrom: g.Chrom, Start: x, End: y, Feature: FeatureIntron, Strand: g.Strand, GeneID: g.ID}
		for i := range models {
			f := models[i].label(x, forward)
			if featureRank(f, "") < rank(best) {
				best.Feature = f
			}
		}
		out = appendMerged(out, best)
	}
	return out
}

func exonModels(g *cache.Gene, rep *diag.Report) []exonModel {
	if len(g.Transcripts) == 0 {
		return []exonModel{{exons: []cache.Exon{{Number: 1, Start: g.Start, End: g.End}}}}
	}

	models := make([]exonModel, 0, len(g.Transcripts))
	for _, t := range g.Transcripts {
		m := exonModel{exons: t.Exons}
		if len(m.exons) == 0 {
			if t.End <= t.Start {
				rep.Warn(g.Chrom, g.ID, "transcript %s has no exons, skipped", t.ID)
				continue
			}
			m.exons = []cache.Exon{{Number: 1, Start: t.Start, End: t.End}}
		}

		if t.IsProteinCoding() {
			first, last := m.exons[0].Start, m.exons[len(m.exons)-1].End
			cs, ce := max(t.CDSStart, first), min(t.CDSEnd, last)
			if cs != t.CDSStart || ce != t.CDSEnd {
				rep.Warn(g.Chrom, g.ID, "transcript %s: CDS [%d,%d) extends beyond exons, clipped to [%d,%d)",
					t.ID, t.CDSStart, t.CDSEnd, cs, ce)
			}
			if ce > cs && overlapsExon(m.exons, cs, ce) {
				m.cdsStart, m.cdsEnd, m.coding = cs, ce, true
			} else {
				rep.Warn(g.Chrom, g.ID, "transcript %s: CDS [%d,%d) covers no exon, treated as non-coding",
					t.ID, t.CDSStart, t.CDSEnd)
			}
		}
		models = append(models, m)
	}

	if len(models) == 0 {
		models = append(models, exonModel{exons: []cache.Exon{{Number: 1, Start: g.Start, End: g.End}}})
	}
	return models
}

func overlapsExon(exons []cache.Exon, start, end int64) bool {
	for _, e := range exons {
		if e.Start < end && e.End > start {
			return true
		}
	}
	return false
}

// uniqueSorted sorts v, drops duplicates and keeps only values in [lo, hi].
func uniqueSorted(v []int64, lo, hi int64) []int64 {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	out := v[:0]
	for _, x := range v {
		if x < lo || x > hi {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == x {
			continue
		}
		out = append(out, x)
	}
	return out
}

// appendMerged appends iv, extending the last interval instead when the two
// touch and carry the same label.
func appendMerged(out []Interval, iv Interval) []Interval {
	if n := len(out); n > 0 && out[n-1].End == iv.Start && sameLabel(out[n-1], iv) {
		out[n-1].End = iv.End
		return out
	}
	return append(out, iv)
}
