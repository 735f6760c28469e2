package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/gffannot/internal/cache"
	"github.com/inodb/gffannot/internal/diag"
)

func TestResolveGene(t *testing.T) {
	tests := []struct {
		name     string
		gene     *cache.Gene
		expected []Interval
		warnings int
	}{
		{
			name: "forward coding",
			gene: gene("g", 2000, 3000, cache.Forward,
				tx("t", [2]int64{2100, 2900}, [2]int64{2000, 3000})),
			expected: []Interval{
				iv(2000, 2100, FeatureUTR5, "g", cache.Forward),
				iv(2100, 2900, FeatureCDS, "g", cache.Forward),
				iv(2900, 3000, FeatureUTR3, "g", cache.Forward),
			},
		},
		{
			name: "reverse coding swaps UTRs",
			gene: gene("g", 1000, 2000, cache.Reverse,
				tx("t", [2]int64{1200, 1800}, [2]int64{1000, 2000})),
			expected: []Interval{
				iv(1000, 1200, FeatureUTR3, "g", cache.Reverse),
				iv(1200, 1800, FeatureCDS, "g", cache.Reverse),
				iv(1800, 2000, FeatureUTR5, "g", cache.Reverse),
			},
		},
		{
			name: "introns split CDS",
			gene: gene("g", 100, 1000, cache.Forward,
				tx("t", [2]int64{200, 950}, [2]int64{100, 300}, [2]int64{500, 700}, [2]int64{900, 1000})),
			expected: []Interval{
				iv(100, 200, FeatureUTR5, "g", cache.Forward),
				iv(200, 300, FeatureCDS, "g", cache.Forward),
				iv(300, 500, FeatureIntron, "g", cache.Forward),
				iv(500, 700, FeatureCDS, "g", cache.Forward),
				iv(700, 900, FeatureIntron, "g", cache.Forward),
				iv(900, 950, FeatureCDS, "g", cache.Forward),
				iv(950, 1000, FeatureUTR3, "g", cache.Forward),
			},
		},
		{
			name: "non-coding exons are UTR5",
			gene: gene("g", 0, 500, cache.Reverse,
				tx("t", noCDS(), [2]int64{0, 100}, [2]int64{400, 500})),
			expected: []Interval{
				iv(0, 100, FeatureUTR5, "g", cache.Reverse),
				iv(100, 400, FeatureIntron, "g", cache.Reverse),
				iv(400, 500, FeatureUTR5, "g", cache.Reverse),
			},
		},
		{
			name: "no transcripts",
			gene: gene("g", 10, 20, cache.Forward),
			expected: []Interval{
				iv(10, 20, FeatureUTR5, "g", cache.Forward),
			},
		},
		{
			name: "transcript union by priority",
			gene: gene("g", 0, 200, cache.Forward,
				tx("t1", noCDS(), [2]int64{0, 100}),
				tx("t2", [2]int64{60, 150}, [2]int64{50, 150})),
			expected: []Interval{
				iv(0, 60, FeatureUTR5, "g", cache.Forward),
				iv(60, 150, FeatureCDS, "g", cache.Forward),
				iv(150, 200, FeatureIntron, "g", cache.Forward),
			},
		},
		{
			name: "CDS beyond exons is clipped",
			gene: gene("g", 100, 200, cache.Forward,
				tx("t", [2]int64{50, 250}, [2]int64{100, 200})),
			expected: []Interval{
				iv(100, 200, FeatureCDS, "g", cache.Forward),
			},
			warnings: 1,
		},
		{
			name: "CDS inside intron becomes non-coding",
			gene: gene("g", 100, 400, cache.Forward,
				tx("t", [2]int64{220, 280}, [2]int64{100, 200}, [2]int64{300, 400})),
			expected: []Interval{
				iv(100, 200, FeatureUTR5, "g", cache.Forward),
				iv(200, 300, FeatureIntron, "g", cache.Forward),
				iv(300, 400, FeatureUTR5, "g", cache.Forward),
			},
			warnings: 1,
		},
		{
			name: "gene wider than exons",
			gene: gene("g", 0, 100, cache.Forward,
				tx("t", noCDS(), [2]int64{20, 80})),
			expected: []Interval{
				iv(0, 20, FeatureIntron, "g", cache.Forward),
				iv(20, 80, FeatureUTR5, "g", cache.Forward),
				iv(80, 100, FeatureIntron, "g", cache.Forward),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &diag.Report{}
			got := ResolveGene(tt.gene, rep)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.warnings, rep.Count(diag.Warning))
		})
	}
}

func TestResolveGene_CoversGeneSpan(t *testing.T) {
	g := gene("g", 1000, 5000, cache.Reverse,
		tx("a", [2]int64{1500, 4000}, [2]int64{1000, 1800}, [2]int64{2500, 4200}),
		tx("b", noCDS(), [2]int64{3000, 5000}))

	got := ResolveGene(g, &diag.Report{})
	if assert.NotEmpty(t, got) {
		assert.Equal(t, g.Start, got[0].Start)
		assert.Equal(t, g.End, got[len(got)-1].End)
	}
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].End, got[i].Start)
		assert.NotEqual(t, got[i-1].Feature, got[i].Feature, "adjacent equal labels should merge")
	}
}

func TestResolveGene_EmptySpan(t *testing.T) {
	assert.Nil(t, ResolveGene(gene("g", 10, 10, cache.Forward), &diag.Report{}))
}
