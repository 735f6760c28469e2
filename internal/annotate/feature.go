package annotate

import (
	"fmt"

	"github.com/inodb/gffannot/internal/cache"
)

// Feature is the label of an output interval.
type Feature string

// Feature labels.
const (
	FeatureCDS        Feature = "CDS"
	FeatureUTR5       Feature = "UTR5"
	FeatureUTR3       Feature = "UTR3"
	FeatureIntron     Feature = "intron"
	FeatureTSS        Feature = "TSS"
	FeaturePromoter   Feature = "promoter"
	FeatureIntergenic Feature = "intergenic"
)

// NoteOperon marks intergenic space between members of an operon.
const NoteOperon = "operon"

// Interval is one labelled, 0-based half-open range on a chromosome.
type Interval struct {
	Chrom   string
	Start   int64
	End     int64
	Feature Feature
	Strand  cache.Strand
	GeneID  string // source gene, empty for plain intergenic space
	Note    string
}

// Len returns the number of bases covered.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d %s", iv.Chrom, iv.Start, iv.End, iv.Feature)
}

// rank orders labels for painting; lower wins.
func rank(iv Interval) int {
	return featureRank(iv.Feature, iv.Note)
}

func featureRank(f Feature, note string) int {
	switch f {
	case FeatureCDS:
		return 0
	case FeatureUTR5:
		return 1
	case FeatureUTR3:
		return 2
	case FeatureIntron:
		return 3
	case FeaturePromoter:
		return 4
	case FeatureIntergenic:
		if note == NoteOperon {
			return 5
		}
	}
	return 6
}

// sameLabel reports whether a and b can be merged when adjacent.
func sameLabel(a, b Interval) bool {
	return a.Feature == b.Feature && a.Strand == b.Strand && a.GeneID == b.GeneID && a.Note == b.Note
}
