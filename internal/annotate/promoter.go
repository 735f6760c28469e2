package annotate

import (
	"sort"

	"github.com/inodb/gffannot/internal/cache"
)

type promoterWindow struct {
	gene       *cache.Gene
	start, end int64
}

// SizePromoters places a TSS site and a promoter upstream of every gene that
// is not suppressed by an operon. genes must be sorted with SortGenes and nb
// must come from AnalyzeNeighbors over the same slice.
//
// A promoter starts as cfg.PromoterSize bases upstream of the TSS and shrinks
// to stay within the chromosome and off every gene body. Divergent genes that
// compete for one gap split it at the midpoint, the reverse-strand gene taking
// the lower half. A gene whose TSS boundary lies strictly inside another gene
// body gets neither promoter nor TSS. Empty promoters are omitted while the TSS
// site is kept. Both results follow gene order.
func SizePromoters(genes []*cache.Gene, nb Neighborhood, length int64, cfg Config) (promoters, sites []Interval) {
	tree := cache.BuildIntervalTree(genes)
	suppressed := nb.Suppressed()

	windows := make([]promoterWindow, 0, len(genes))
	for _, g := range genes {
		if suppressed[g] {
			continue
		}
		var w promoterWindow
		if g.IsReverseStrand() {
			b := g.End
			if straddled(tree, b) {
				continue
			}
			w = promoterWindow{gene: g, start: b, end: min(b+cfg.PromoterSize, length)}
			for _, h := range tree.FindOverlaps(w.start, w.end) {
				w.end = min(w.end, h.Start)
			}
		} else {
			b := g.Start
			if straddled(tree, b) {
				continue
			}
			w = promoterWindow{gene: g, start: max(b-cfg.PromoterSize, 0), end: b}
			for _, h := range tree.FindOverlaps(w.start, w.end) {
				w.start = max(w.start, h.End)
			}
		}
		w.end = max(w.end, w.start)
		windows = append(windows, w)

		tss := g.TSS()
		sites = append(sites, Interval{
			Chrom:   g.Chrom,
			Start:   tss,
			End:     tss + 1,
			Feature: FeatureTSS,
			Strand:  g.Strand,
			GeneID:  g.ID,
		})
	}

	splitDivergent(windows)

	for _, w := range windows {
		if w.end <= w.start {
			continue
		}
		promoters = append(promoters, Interval{
			Chrom:   w.gene.Chrom,
			Start:   w.start,
			End:     w.end,
			Feature: FeaturePromoter,
			Strand:  w.gene.Strand,
			GeneID:  w.gene.ID,
		})
	}
	return promoters, sites
}

// straddled reports whether some gene body covers both sides of boundary b.
func straddled(tree *cache.IntervalTree, b int64) bool {
	for _, h := range tree.FindOverlaps(b-1, b+1) {
		if h.Start < b && h.End > b {
			return true
		}
	}
	return false
}

// splitDivergent resolves overlaps between a reverse-strand promoter growing
// right from e and a forward-strand promoter growing left from s. Body
// clamping leaves no other way for two windows with different boundaries to
// meet.
func splitDivergent(windows []promoterWindow) {
	var fwd []*promoterWindow
	for i := range windows {
		if !windows[i].gene.IsReverseStrand() {
			fwd = append(fwd, &windows[i])
		}
	}
	sort.SliceStable(fwd, func(i, j int) bool { return fwd[i].end < fwd[j].end })

	for i := range windows {
		rw := &windows[i]
		if !rw.gene.IsReverseStrand() || rw.end <= rw.start {
			continue
		}
		e, reach := rw.start, rw.end
		j := sort.Search(len(fwd), func(j int) bool { return fwd[j].end > e })
		for ; j < len(fwd) && fwd[j].start < reach; j++ {
			fw := fwd[j]
			if fw.end <= fw.start || fw.start < e {
				continue
			}
			s := fw.end
			mid := e + (s-e)/2
			rw.end = min(rw.end, mid)
			fw.start = max(fw.start, mid)
		}
	}
}
