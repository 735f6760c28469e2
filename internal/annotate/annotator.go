// Package annotate resolves gene models into a labelled partition of each
// chromosome: CDS, UTRs, introns, promoters and intergenic space, plus TSS
// sites.
package annotate

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/gffannot/internal/cache"
	"github.com/inodb/gffannot/internal/diag"
	"github.com/inodb/gffannot/internal/genome"
)

// GeneSource provides gene models grouped by chromosome.
type GeneSource interface {
	Chromosomes() []string
	GenesByChrom(chrom string) []*cache.Gene
}

// Annotator builds chromosome annotations from gene models.
type Annotator struct {
	cfg    Config
	logger *zap.Logger
}

// NewAnnotator creates an annotator with the given settings.
func NewAnnotator(cfg Config) *Annotator {
	return &Annotator{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Config returns the annotator settings.
func (a *Annotator) Config() Config {
	return a.cfg
}

// Result is the annotation of one chromosome.
type Result struct {
	Chrom     string
	Length    int64
	Intervals []Interval // region track tiling [0, Length)
	Sites     []Interval // TSS sites, in gene order
	Genes     int        // genes annotated after preparation
	Report    *diag.Report
}

// Records returns the region track with TSS sites interleaved in coordinate
// order when withTSS is set.
func (r *Result) Records(withTSS bool) []Interval {
	if !withTSS || len(r.Sites) == 0 {
		return r.Intervals
	}
	sites := append([]Interval(nil), r.Sites...)
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Start < sites[j].Start })

	out := make([]Interval, 0, len(r.Intervals)+len(sites))
	j := 0
	for _, iv := range r.Intervals {
		for j < len(sites) && (sites[j].Start < iv.Start || sites[j].Start == iv.Start && sites[j].End < iv.End) {
			out = append(out, sites[j])
			j++
		}
		out = append(out, iv)
	}
	return append(out, sites[j:]...)
}

// AnnotateChromosome annotates genes on one chromosome. The input genes are
// not modified. Problems with individual genes are recorded in the result's
// report and never stop the chromosome.
func (a *Annotator) AnnotateChromosome(chrom string, length int64, genes []*cache.Gene) *Result {
	rep := &diag.Report{}
	prepared := prepareGenes(chrom, length, genes, rep)
	SortGenes(prepared)

	var features []Interval
	for _, g := range prepared {
		features = append(features, ResolveGene(g, rep)...)
	}
	nb := AnalyzeNeighbors(prepared, length, a.cfg)
	promoters, sites := SizePromoters(prepared, nb, length, a.cfg)
	features = append(features, promoters...)

	intervals := AssignIntergenic(chrom, length, features, nb)
	if err := CheckPartition(length, intervals); err != nil {
		rep.Error(chrom, "", "partition check failed: %v", err)
	}
	for _, err := range CheckPromoters(prepared, promoters, a.cfg.PromoterSize) {
		rep.Error(chrom, "", "promoter check failed: %v", err)
	}

	return &Result{
		Chrom:     chrom,
		Length:    length,
		Intervals: intervals,
		Sites:     sites,
		Genes:     len(prepared),
		Report:    rep,
	}
}

// AnnotateAll annotates every chromosome of g in size-table order and writes
// the records to writer. Genes on chromosomes missing from g are dropped and
// reported. The returned report holds all diagnostics; the error is set only
// when writing fails.
func (a *Annotator) AnnotateAll(g *genome.Genome, genes GeneSource, writer IntervalWriter) (*diag.Report, error) {
	rep := &diag.Report{}
	for _, chrom := range genes.Chromosomes() {
		if _, ok := g.Length(chrom); ok {
			continue
		}
		for _, gene := range genes.GenesByChrom(chrom) {
			rep.Error(chrom, gene.ID, "chromosome not in size table, gene dropped")
		}
	}

	names := g.Names()
	items := make(chan WorkItem, len(names))
	for i, name := range names {
		length, _ := g.Length(name)
		items <- WorkItem{Seq: i, Chrom: name, Length: length, Genes: genes.GenesByChrom(name)}
	}
	close(items)

	results := a.ParallelAnnotate(items, a.cfg.Workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		rep.Merge(r.Result.Report)
		a.logger.Debug("annotated chromosome",
			zap.String("chrom", r.Chrom),
			zap.Int("genes", r.Result.Genes),
			zap.Int("intervals", len(r.Result.Intervals)),
			zap.Int("tss", len(r.Result.Sites)))
		for _, iv := range r.Result.Records(a.cfg.EmitTSS) {
			if err := writer.Write(iv); err != nil {
				return fmt.Errorf("write interval: %w", err)
			}
		}
		return nil
	}); err != nil {
		return rep, err
	}

	return rep, writer.Flush()
}

// prepareGenes deep-copies genes, repairs their exon structure and clips
// them to [0, length).
func prepareGenes(chrom string, length int64, genes []*cache.Gene, rep *diag.Report) []*cache.Gene {
	out := make([]*cache.Gene, 0, len(genes))
	for _, src := range genes {
		g := src.Clone()
		g.Chrom = chrom

		for _, t := range g.Transcripts {
			for _, issue := range t.Normalize() {
				rep.Warn(chrom, g.ID, "%s", issue)
			}
			if start, end, ok := t.ExonExtent(); ok && (start < g.Start || end > g.End) {
				rep.Warn(chrom, g.ID, "transcript %s [%d,%d) extends beyond gene [%d,%d), gene extended",
					t.ID, start, end, g.Start, g.End)
				g.Start, g.End = min(g.Start, start), max(g.End, end)
			}
		}

		if g.End <= g.Start {
			rep.Error(chrom, g.ID, "empty gene span [%d,%d), gene dropped", g.Start, g.End)
			continue
		}
		if g.End <= 0 || g.Start >= length {
			rep.Error(chrom, g.ID, "gene [%d,%d) lies outside chromosome of length %d, gene dropped",
				g.Start, g.End, length)
			continue
		}
		if g.Start < 0 || g.End > length {
			rep.Warn(chrom, g.ID, "gene [%d,%d) exceeds chromosome of length %d, clipped", g.Start, g.End, length)
			clipGene(g, 0, length)
		}
		out = append(out, g)
	}
	return out
}

// clipGene restricts a gene and its transcripts to [lo, hi).
func clipGene(g *cache.Gene, lo, hi int64) {
	g.Start, g.End = max(g.Start, lo), min(g.End, hi)
	for _, t := range g.Transcripts {
		exons := t.Exons[:0]
		for _, e := range t.Exons {
			e.Start, e.End = max(e.Start, lo), min(e.End, hi)
			if e.End > e.Start {
				exons = append(exons, e)
			}
		}
		t.Exons = exons
		t.Start, t.End = max(t.Start, lo), min(t.End, hi)
		if t.IsProteinCoding() {
			t.CDSStart, t.CDSEnd = max(t.CDSStart, lo), min(t.CDSEnd, hi)
			if t.CDSEnd <= t.CDSStart {
				t.CDSStart, t.CDSEnd = 0, 0
			}
		}
	}
}
