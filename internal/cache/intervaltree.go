package cache

import "sort"

// IntervalTree provides O(log n + k) range queries over gene spans using a
// sorted-slice approach. Genes are indexed once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start int64
	end   int64
	gene  *Gene
}

// BuildIntervalTree creates an interval tree from a slice of genes.
func BuildIntervalTree(genes []*Gene) *IntervalTree {
	if len(genes) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(genes))
	for i, g := range genes {
		intervals[i] = interval{start: g.Start, end: g.End, gene: g}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Prefix-max array: maxEnd[i] = max(end) for intervals[:i+1]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = max(maxEnd[i-1], intervals[i].end)
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// Len returns the number of indexed genes.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}

// FindOverlaps returns all genes whose [Start, End) span intersects the
// half-open range [start, end), in ascending start order.
func (t *IntervalTree) FindOverlaps(start, end int64) []*Gene {
	if len(t.intervals) == 0 || end <= start {
		return nil
	}

	// Candidates must start before end: [0, hi).
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start >= end
	})

	// Skip the prefix whose running max end cannot reach start.
	lo := sort.Search(hi, func(i int) bool {
		return t.maxEnd[i] > start
	})

	var result []*Gene
	for i := lo; i < hi; i++ {
		if t.intervals[i].end > start {
			result = append(result, t.intervals[i].gene)
		}
	}
	return result
}
