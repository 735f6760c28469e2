package annotate

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/inodb/gffannot/internal/cache"
)

// geneBody is a gene span stored in a biogo interval tree.
type geneBody struct {
	gene *cache.Gene
	id   uintptr
}

func (b geneBody) Overlap(r interval.IntRange) bool {
	return int(b.gene.End) > r.Start && int(b.gene.Start) < r.End
}
func (b geneBody) ID() uintptr { return b.id }
func (b geneBody) Range() interval.IntRange {
	return interval.IntRange{Start: int(b.gene.Start), End: int(b.gene.End)}
}

type rangeQuery struct {
	start, end int
}

func (q rangeQuery) Overlap(r interval.IntRange) bool {
	return q.end > r.Start && q.start < r.End
}

// CheckPromoters returns one error for every promoter that overlaps a gene
// body or exceeds size bases.
func CheckPromoters(genes []*cache.Gene, promoters []Interval, size int64) []error {
	var tree interval.IntTree
	for i, g := range genes {
		if g.End <= g.Start {
			continue
		}
		if err := tree.Insert(geneBody{gene: g, id: uintptr(i)}, true); err != nil {
			return []error{fmt.Errorf("index gene %s: %w", g.ID, err)}
		}
	}
	tree.AdjustRanges()

	var errs []error
	for _, p := range promoters {
		if p.Len() > size {
			errs = append(errs, fmt.Errorf("promoter %s of gene %s is longer than %d", p, p.GeneID, size))
		}
		for _, hit := range tree.Get(rangeQuery{start: int(p.Start), end: int(p.End)}) {
			g := hit.(geneBody).gene
			errs = append(errs, fmt.Errorf("promoter %s of gene %s overlaps gene %s", p, p.GeneID, g.ID))
		}
	}
	return errs
}
