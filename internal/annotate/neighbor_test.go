package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gffannot/internal/cache"
)

func TestSortGenes_TieBreakByID(t *testing.T) {
	genes := []*cache.Gene{
		gene("c", 500, 600, cache.Forward),
		gene("b", 100, 200, cache.Forward),
		gene("a", 100, 300, cache.Reverse),
	}
	SortGenes(genes)

	ids := []string{genes[0].ID, genes[1].ID, genes[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestAnalyzeNeighbors(t *testing.T) {
	genes := []*cache.Gene{
		gene("a", 100, 200, cache.Forward),
		gene("b", 250, 400, cache.Forward),
		gene("c", 350, 500, cache.Reverse),
		gene("d", 900, 1000, cache.Unknown),
		gene("e", 1100, 1200, cache.Unknown),
	}
	cfg := Config{PromoterSize: 100, OperonsEnabled: true, OperonDistance: 100}

	nb := AnalyzeNeighbors(genes, 2000, cfg)
	require.Len(t, nb.Relations, 4)

	assert.Equal(t, int64(100), nb.Leading)
	assert.Equal(t, int64(800), nb.Trailing)

	ab := nb.Relations[0]
	assert.Equal(t, int64(50), ab.Gap)
	assert.True(t, ab.SameStrand)
	assert.True(t, ab.Operon)
	assert.Equal(t, "a", ab.Upstream().ID)
	assert.Equal(t, "b", ab.Downstream().ID)

	bc := nb.Relations[1]
	assert.Equal(t, int64(-50), bc.Gap)
	assert.False(t, bc.SameStrand)
	assert.False(t, bc.Operon)

	de := nb.Relations[3]
	assert.False(t, de.SameStrand, "unknown strands never match")
	assert.False(t, de.Operon)
}

func TestAnalyzeNeighbors_OperonsDisabled(t *testing.T) {
	genes := []*cache.Gene{
		gene("a", 100, 200, cache.Forward),
		gene("b", 210, 400, cache.Forward),
	}
	nb := AnalyzeNeighbors(genes, 1000, Config{PromoterSize: 100, OperonDistance: 500})
	require.Len(t, nb.Relations, 1)
	assert.False(t, nb.Relations[0].Operon)
	assert.Empty(t, nb.Suppressed())
}

func TestAnalyzeNeighbors_ReverseOperonDownstreamIsLeft(t *testing.T) {
	genes := []*cache.Gene{
		gene("a", 100, 200, cache.Reverse),
		gene("b", 250, 400, cache.Reverse),
	}
	nb := AnalyzeNeighbors(genes, 1000, Config{OperonsEnabled: true, OperonDistance: 100})
	require.Len(t, nb.Relations, 1)

	rel := nb.Relations[0]
	assert.True(t, rel.Operon)
	assert.Equal(t, "b", rel.Upstream().ID)
	assert.Equal(t, "a", rel.Downstream().ID)
	assert.True(t, nb.Suppressed()[genes[0]])
	assert.False(t, nb.Suppressed()[genes[1]])
}

func TestAnalyzeNeighbors_GapAtThreshold(t *testing.T) {
	genes := []*cache.Gene{
		gene("a", 100, 200, cache.Forward),
		gene("b", 300, 400, cache.Forward),
	}
	nb := AnalyzeNeighbors(genes, 1000, Config{OperonsEnabled: true, OperonDistance: 100})
	assert.False(t, nb.Relations[0].Operon, "gap equal to the distance is not an operon")
}

func TestAnalyzeNeighbors_NestedGene(t *testing.T) {
	genes := []*cache.Gene{
		gene("a", 1000, 5000, cache.Forward),
		gene("b", 1500, 1600, cache.Forward),
		gene("c", 5100, 6000, cache.Forward),
	}
	nb := AnalyzeNeighbors(genes, 10000, Config{OperonsEnabled: true, OperonDistance: 500})
	require.Len(t, nb.Relations, 2)

	ac := nb.Relations[1]
	assert.Equal(t, "a", ac.Left.ID, "the enclosing gene is the left neighbour")
	assert.Equal(t, "c", ac.Right.ID)
	assert.Equal(t, int64(100), ac.Gap)
	assert.True(t, ac.Operon)
	assert.True(t, nb.Suppressed()[genes[2]])
	assert.Equal(t, int64(4000), nb.Trailing)
}

func TestAnalyzeNeighbors_Empty(t *testing.T) {
	nb := AnalyzeNeighbors(nil, 1000, DefaultConfig())
	assert.Empty(t, nb.Relations)
	assert.Equal(t, int64(1000), nb.Leading)
}

func TestAnalyzeNeighbors_TrailingUsesRightmostEnd(t *testing.T) {
	genes := []*cache.Gene{
		gene("long", 0, 900, cache.Forward),
		gene("inner", 100, 200, cache.Forward),
	}
	nb := AnalyzeNeighbors(genes, 1000, DefaultConfig())
	assert.Equal(t, int64(100), nb.Trailing)
}
