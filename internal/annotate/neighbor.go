package annotate

import (
	"sort"

	"github.com/inodb/gffannot/internal/cache"
)

// NeighborRelation describes two genes that are adjacent in coordinate order.
// Left is the gene reaching furthest right among those starting before Right,
// so a gene nested in a larger one never hides the larger one's neighbour.
type NeighborRelation struct {
	Left       *cache.Gene
	Right      *cache.Gene
	Gap        int64 // Right.Start - Left.End; negative when the genes overlap
	SameStrand bool  // both strands known and equal
	Operon     bool
}

// Upstream returns the gene transcribed first. For a pair on the reverse
// strand that is the right-hand gene.
func (r NeighborRelation) Upstream() *cache.Gene {
	if r.SameStrand && r.Left.IsReverseStrand() {
		return r.Right
	}
	return r.Left
}

// Downstream returns the gene transcribed second. In an operon it is the
// member whose promoter is suppressed.
func (r NeighborRelation) Downstream() *cache.Gene {
	if r.SameStrand && r.Left.IsReverseStrand() {
		return r.Left
	}
	return r.Right
}

// Neighborhood is the neighbour analysis of one chromosome.
type Neighborhood struct {
	Relations []NeighborRelation
	Leading   int64 // bases before the first gene
	Trailing  int64 // bases after the rightmost gene end
}

// Suppressed returns the genes whose promoter and TSS give way to an operon.
func (n Neighborhood) Suppressed() map[*cache.Gene]bool {
	s := make(map[*cache.Gene]bool)
	for _, r := range n.Relations {
		if r.Operon {
			s[r.Downstream()] = true
		}
	}
	return s
}

// SortGenes orders genes by start coordinate, breaking ties by gene ID.
func SortGenes(genes []*cache.Gene) {
	sort.SliceStable(genes, func(i, j int) bool {
		if genes[i].Start != genes[j].Start {
			return genes[i].Start < genes[j].Start
		}
		return genes[i].ID < genes[j].ID
	})
}

// AnalyzeNeighbors computes the relation of every adjacent pair of genes.
// genes must already be sorted with SortGenes.
func AnalyzeNeighbors(genes []*cache.Gene, length int64, cfg Config) Neighborhood {
	var n Neighborhood
	if len(genes) == 0 {
		n.Leading = length
		return n
	}

	n.Leading = genes[0].Start
	left := genes[0]
	for _, right := range genes[1:] {
		rel := NeighborRelation{
			Left:       left,
			Right:      right,
			Gap:        right.Start - left.End,
			SameStrand: left.Strand != cache.Unknown && left.Strand == right.Strand,
		}
		rel.Operon = cfg.OperonsEnabled && rel.SameStrand && rel.Gap < cfg.OperonDistance
		n.Relations = append(n.Relations, rel)
		if right.End > left.End {
			left = right
		}
	}
	n.Trailing = max(length-left.End, 0)
	return n
}
