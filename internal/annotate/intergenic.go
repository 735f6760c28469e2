package annotate

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/inodb/gffannot/internal/cache"
)

// paintPiece is a candidate label for a range; the lowest (rank, order) wins.
type paintPiece struct {
	Interval
	rank  int
	order int
}

type pieceHeap []*paintPiece

func (h pieceHeap) Len() int { return len(h) }
func (h pieceHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].order < h[j].order
}
func (h pieceHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pieceHeap) Push(x any)   { *h = append(*h, x.(*paintPiece)) }
func (h *pieceHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// AssignIntergenic paints features onto [0, length) and fills what remains
// with intergenic intervals, returning a gap-free, non-overlapping track in
// coordinate order.
//
// Where features overlap the label with the lowest rank wins: CDS, UTR5,
// UTR3, intron, promoter, then operon intergenic space. Equal ranks go to the
// feature that appears first in features, so callers pass them in gene order.
// Operon gaps from nb become intergenic intervals noted as operon and
// attributed to the suppressed gene.
func AssignIntergenic(chrom string, length int64, features []Interval, nb Neighborhood) []Interval {
	pieces := make([]*paintPiece, 0, len(features)+len(nb.Relations))
	add := func(iv Interval) {
		iv.Start, iv.End = max(iv.Start, 0), min(iv.End, length)
		if iv.End <= iv.Start {
			return
		}
		pieces = append(pieces, &paintPiece{Interval: iv, rank: rank(iv), order: len(pieces)})
	}
	for _, iv := range features {
		add(iv)
	}
	for _, r := range nb.Relations {
		if !r.Operon || r.Gap <= 0 {
			continue
		}
		down := r.Downstream()
		add(Interval{
			Chrom:   chrom,
			Start:   r.Left.End,
			End:     r.Right.Start,
			Feature: FeatureIntergenic,
			Strand:  down.Strand,
			GeneID:  down.ID,
			Note:    NoteOperon,
		})
	}

	bounds := make([]int64, 0, 2*len(pieces)+2)
	bounds = append(bounds, 0, length)
	for _, p := range pieces {
		bounds = append(bounds, p.Start, p.End)
	}
	bounds = uniqueSorted(bounds, 0, length)
	sort.SliceStable(pieces, func(i, j int) bool { return pieces[i].Start < pieces[j].Start })

	var (
		out    []Interval
		active pieceHeap
		next   int
	)
	for k := 0; k+1 < len(bounds); k++ {
		x, y := bounds[k], bounds[k+1]
		for next < len(pieces) && pieces[next].Start <= x {
			heap.Push(&active, pieces[next])
			next++
		}
		for active.Len() > 0 && active[0].End <= x {
			heap.Pop(&active)
		}

		iv := Interval{Chrom: chrom, Feature: FeatureIntergenic, Strand: cache.Unknown}
		if active.Len() > 0 {
			iv = active[0].Interval
		}
		iv.Chrom, iv.Start, iv.End = chrom, x, y
		out = appendMerged(out, iv)
	}
	return out
}

// CheckPartition verifies that intervals tile [0, length) exactly once.
func CheckPartition(length int64, intervals []Interval) error {
	if len(intervals) == 0 {
		return fmt.Errorf("no intervals for chromosome of length %d", length)
	}
	if intervals[0].Start != 0 {
		return fmt.Errorf("first interval starts at %d, not 0", intervals[0].Start)
	}
	for i, iv := range intervals {
		if iv.End <= iv.Start {
			return fmt.Errorf("empty interval %s", iv)
		}
		if i > 0 && intervals[i-1].End != iv.Start {
			if intervals[i-1].End < iv.Start {
				return fmt.Errorf("gap between %d and %d", intervals[i-1].End, iv.Start)
			}
			return fmt.Errorf("overlap between %s and %s", intervals[i-1], iv)
		}
	}
	if last := intervals[len(intervals)-1].End; last != length {
		return fmt.Errorf("last interval ends at %d, not %d", last, length)
	}
	return nil
}
