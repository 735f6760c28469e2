// Package cache provides the gene model store and GFF loading functionality.
package cache

// Strand is the orientation of a gene on its chromosome.
type Strand int8

// Strand values.
const (
	Reverse Strand = -1
	Unknown Strand = 0
	Forward Strand = 1
)

// String returns the GFF/BED strand symbol.
func (s Strand) String() string {
	switch s {
	case Forward:
		return "+"
	case Reverse:
		return "-"
	}
	return "."
}

// ParseStrand converts a strand symbol to a Strand.
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return Forward
	case "-":
		return Reverse
	}
	return Unknown
}

// Gene represents a genomic region with associated transcripts.
// Coordinates are 0-based, half-open.
type Gene struct {
	ID          string        // Gene identifier (e.g., GSOIDG00001)
	Name        string        // Gene symbol
	Chrom       string        // Chromosome
	Start       int64         // Gene start position (0-based, inclusive)
	End         int64         // Gene end position (exclusive)
	Strand      Strand        // Forward, Reverse or Unknown
	Biotype     string        // Gene biotype (e.g., protein_coding)
	Transcripts []*Transcript // Associated transcripts
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == Forward
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == Reverse
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos < g.End
}

// Len returns the length of the gene span in bases.
func (g *Gene) Len() int64 {
	return g.End - g.Start
}

// TSS returns the first transcribed base. Genes with unknown strand are
// treated as forward.
func (g *Gene) TSS() int64 {
	if g.IsReverseStrand() {
		return g.End - 1
	}
	return g.Start
}

// Clone returns a deep copy of the gene and its transcripts.
func (g *Gene) Clone() *Gene {
	c := *g
	c.Transcripts = make([]*Transcript, len(g.Transcripts))
	for i, t := range g.Transcripts {
		tc := *t
		tc.Exons = append([]Exon(nil), t.Exons...)
		c.Transcripts[i] = &tc
	}
	return &c
}
