package cache

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
	"github.com/klauspost/compress/gzip"

	"github.com/inodb/gffannot/internal/diag"
)

// GFFLoader loads gene models from GFF3, GTF/GFF2 or prokaryotic
// gene/CDS GFF files.
type GFFLoader struct {
	path string
}

// NewGFFLoader creates a new GFF loader.
func NewGFFLoader(path string) *GFFLoader {
	return &GFFLoader{path: path}
}

// Load loads all genes from the GFF file into the cache. Recoverable
// problems with individual records are added to rep.
func (l *GFFLoader) Load(c *Cache, rep *diag.Report) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GFF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, err := l.parseGFF(reader, rep)
	if err != nil {
		return err
	}

	for _, g := range genes {
		c.AddGene(g)
	}

	return nil
}

// gff2Records copies the feature section of a GFF stream in the GFF2 form
// read by gff.Reader. "##" directives are dropped, reading stops at an
// embedded FASTA section and the attribute column of every record is
// rewritten by gff2Attributes. Every line is newline terminated so the final
// record is not lost.
func gff2Records(r io.Reader) (*bytes.Buffer, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long attribute columns
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var out bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "##FASTA") || strings.HasPrefix(line, ">") {
			break
		}
		if strings.HasPrefix(line, "##") {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			if fields := strings.SplitN(line, "\t", 10); len(fields) > 8 {
				fields[8] = gff2Attributes(fields[8])
				line = strings.Join(fields, "\t")
			}
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GFF: %w", err)
	}
	return &out, nil
}

// gff2Attributes converts a GFF3 attribute column (ID=g1;Name=a%3Bb) to GFF2
// form (ID "g1"; Name "a;b"), percent-decoding values. GTF columns pass
// through. Pairs whose tag gff.Reader cannot hold are dropped.
func gff2Attributes(col string) string {
	var parts []string
	for _, pair := range strings.Split(col, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tag, value, gff3 := strings.Cut(pair, "=")
		if !gff3 || strings.ContainsFunc(tag, unicode.IsSpace) {
			tag, value, _ = strings.Cut(pair, " ")
			gff3 = false
		}
		tag = strings.TrimSpace(tag)
		if !validTag(tag) {
			continue
		}
		if !gff3 {
			parts = append(parts, pair)
			continue
		}
		value = strings.TrimSpace(value)
		if u, err := url.PathUnescape(value); err == nil && !strings.Contains(u, ";") {
			value = u
		}
		value = strings.ReplaceAll(value, `"`, "")
		parts = append(parts, tag+` "`+value+`"`)
	}
	return strings.Join(parts, "; ")
}

// validTag reports whether tag uses only the letters and underscores
// gff.Reader accepts.
func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, r := range tag {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// partKind classifies sub-transcript records.
type partKind int

const (
	partExon partKind = iota
	partCDS
	partUTR
)

// part is an exon, CDS or UTR record waiting for parent resolution.
type part struct {
	kind     partKind
	parents  []string
	geneHint string
	chrom    string
	start    int64
	end      int64
	strand   Strand
}

// gffBuilder assembles typed genes from GFF records. Parents may appear
// after their children, so resolution happens in finish.
type gffBuilder struct {
	genes       map[string]*Gene
	geneOrder   []string
	synthesised map[string]bool
	transcripts map[string]*Transcript
	txOrder     []string
	parts       []part
	cds         map[string][][2]int64
	utr         map[string][][2]int64
}

func newGFFBuilder() *gffBuilder {
	return &gffBuilder{
		genes:       make(map[string]*Gene),
		synthesised: make(map[string]bool),
		transcripts: make(map[string]*Transcript),
		cds:         make(map[string][][2]int64),
		utr:         make(map[string][][2]int64),
	}
}

// parseGFF parses GFF content and returns genes sorted by chromosome,
// start and ID.
func (l *GFFLoader) parseGFF(reader io.Reader, rep *diag.Report) ([]*Gene, error) {
	body, err := gff2Records(reader)
	if err != nil {
		return nil, err
	}

	b := newGFFBuilder()
	r := gff.NewReader(body)
	for {
		f, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			rep.Warn("", "", "skipping malformed GFF record: %v", err)
			continue
		}
		gf, ok := f.(*gff.Feature)
		if !ok {
			continue
		}
		b.add(gf, rep)
	}

	return b.finish(rep), nil
}

// add dispatches a single record by feature type.
func (b *gffBuilder) add(f *gff.Feature, rep *diag.Report) {
	kind := strings.ToLower(f.Feature)
	start, end := int64(f.FeatStart), int64(f.FeatEnd)
	strand := fromSeqStrand(f.FeatStrand)

	switch {
	case isGeneType(kind):
		id := attribute(f.FeatAttributes, "ID", "gene_id")
		if id == "" {
			rep.Warn(f.SeqName, "", "%s record at %d has no ID", f.Feature, start+1)
			return
		}
		if _, dup := b.genes[id]; dup {
			rep.Warn(f.SeqName, id, "duplicate gene record ignored")
			return
		}
		b.genes[id] = &Gene{
			ID:      id,
			Name:    attribute(f.FeatAttributes, "Name", "gene_name", "gene"),
			Chrom:   f.SeqName,
			Start:   start,
			End:     end,
			Strand:  strand,
			Biotype: attribute(f.FeatAttributes, "gene_biotype", "gene_type", "biotype"),
		}
		b.geneOrder = append(b.geneOrder, id)

	case isTranscriptType(kind):
		id := attribute(f.FeatAttributes, "ID", "transcript_id")
		if id == "" {
			rep.Warn(f.SeqName, "", "%s record at %d has no ID", f.Feature, start+1)
			return
		}
		if _, dup := b.transcripts[id]; dup {
			return
		}
		geneID := firstParent(attribute(f.FeatAttributes, "Parent", "gene_id"))
		b.transcripts[id] = &Transcript{
			ID:      id,
			GeneID:  geneID,
			Chrom:   f.SeqName,
			Start:   start,
			End:     end,
			Strand:  strand,
			Biotype: f.Feature,
		}
		b.txOrder = append(b.txOrder, id)

	case kind == "exon" || kind == "cds" || kind == "start_codon" || kind == "stop_codon" || isUTRType(kind):
		parents := splitParents(attribute(f.FeatAttributes, "Parent", "transcript_id"))
		if len(parents) == 0 {
			rep.Warn(f.SeqName, "", "%s record at %d has no parent", f.Feature, start+1)
			return
		}
		p := part{
			kind:     partExon,
			parents:  parents,
			geneHint: attribute(f.FeatAttributes, "gene_id"),
			chrom:    f.SeqName,
			start:    start,
			end:      end,
			strand:   strand,
		}
		switch {
		case kind == "cds" || kind == "start_codon" || kind == "stop_codon":
			p.kind = partCDS
		case isUTRType(kind):
			p.kind = partUTR
		}
		b.parts = append(b.parts, p)
	}
}

// finish resolves parents and builds the final gene models.
func (b *gffBuilder) finish(rep *diag.Report) []*Gene {
	exons := make(map[string][]Exon)

	for _, p := range b.parts {
		for _, parent := range p.parents {
			txID, ok := b.resolveTranscript(parent, p)
			if !ok {
				rep.Warn(p.chrom, "", "record at %d refers to unknown parent %s", p.start+1, parent)
				continue
			}
			if t := b.transcripts[txID]; t.Chrom != p.chrom {
				rep.Warn(p.chrom, t.GeneID, "record at %d is on a different chromosome than transcript %s", p.start+1, txID)
				continue
			}
			span := [2]int64{p.start, p.end}
			switch p.kind {
			case partExon:
				exons[txID] = append(exons[txID], Exon{Start: p.start, End: p.end})
			case partCDS:
				b.cds[txID] = append(b.cds[txID], span)
			case partUTR:
				b.utr[txID] = append(b.utr[txID], span)
			}
		}
	}

	// Assemble transcripts with exons and CDS info
	for _, id := range b.txOrder {
		t := b.transcripts[id]

		t.Exons = exons[id]
		if len(t.Exons) == 0 {
			// gene -> mRNA -> CDS/UTR layouts carry no exon records.
			for _, s := range b.cds[id] {
				t.Exons = append(t.Exons, Exon{Start: s[0], End: s[1]})
			}
			for _, s := range b.utr[id] {
				t.Exons = append(t.Exons, Exon{Start: s[0], End: s[1]})
			}
		}
		if len(t.Exons) == 0 && t.End > t.Start {
			t.Exons = []Exon{{Start: t.Start, End: t.End}}
		}
		sort.SliceStable(t.Exons, func(i, j int) bool { return t.Exons[i].Start < t.Exons[j].Start })
		for _, issue := range t.Normalize() {
			rep.Warn(t.Chrom, t.GeneID, "%s", issue)
		}

		if cds := b.cds[id]; len(cds) > 0 {
			t.CDSStart, t.CDSEnd = cds[0][0], cds[0][1]
			for _, s := range cds[1:] {
				t.CDSStart = min(t.CDSStart, s[0])
				t.CDSEnd = max(t.CDSEnd, s[1])
			}
		}

		if lo, hi, ok := t.ExonExtent(); ok {
			if t.End <= t.Start {
				t.Start, t.End = lo, hi
			}
			t.Start = min(t.Start, lo)
			t.End = max(t.End, hi)
		}

		g := b.geneFor(t)
		if t.Strand == Unknown {
			t.Strand = g.Strand
		}
		g.Transcripts = append(g.Transcripts, t)
	}

	genes := make([]*Gene, 0, len(b.geneOrder))
	for _, id := range b.geneOrder {
		g := b.genes[id]
		for _, t := range g.Transcripts {
			if g.End <= g.Start {
				g.Start, g.End = t.Start, t.End
			}
			if g.Strand == Unknown {
				g.Strand = t.Strand
			}
		}
		genes = append(genes, g)
	}

	sort.SliceStable(genes, func(i, j int) bool {
		if genes[i].Chrom != genes[j].Chrom {
			return genes[i].Chrom < genes[j].Chrom
		}
		if genes[i].Start != genes[j].Start {
			return genes[i].Start < genes[j].Start
		}
		return genes[i].ID < genes[j].ID
	})
	return genes
}

// resolveTranscript maps a part's parent ID to a transcript, creating an
// implicit transcript when the parent is a gene (prokaryotic gene -> CDS)
// or when a GTF gene_id identifies the owning gene.
func (b *gffBuilder) resolveTranscript(parent string, p part) (string, bool) {
	if _, ok := b.transcripts[parent]; ok {
		return parent, true
	}

	geneID := ""
	switch {
	case b.genes[parent] != nil:
		geneID = parent
	case p.geneHint != "":
		geneID = p.geneHint
	default:
		return "", false
	}

	b.transcripts[parent] = &Transcript{
		ID:     parent,
		GeneID: geneID,
		Chrom:  p.chrom,
		Strand: p.strand,
	}
	b.txOrder = append(b.txOrder, parent)
	return parent, true
}

// geneFor returns the gene owning t, synthesising one from the transcript
// span when the file declares none. Synthesised genes grow to cover every
// transcript that refers to them.
func (b *gffBuilder) geneFor(t *Transcript) *Gene {
	id := t.GeneID
	if id == "" {
		id = t.ID
		t.GeneID = id
	}
	g, ok := b.genes[id]
	if !ok {
		g = &Gene{
			ID:     id,
			Chrom:  t.Chrom,
			Start:  t.Start,
			End:    t.End,
			Strand: t.Strand,
		}
		b.genes[id] = g
		b.geneOrder = append(b.geneOrder, id)
		b.synthesised[id] = true
		return g
	}
	if b.synthesised[id] {
		g.Start = min(g.Start, t.Start)
		g.End = max(g.End, t.End)
	}
	return g
}

func isGeneType(kind string) bool {
	switch kind {
	case "gene", "pseudogene", "ncrna_gene", "protein_coding_gene":
		return true
	}
	return false
}

func isTranscriptType(kind string) bool {
	switch kind {
	case "mrna", "transcript", "primary_transcript", "pseudogenic_transcript":
		return true
	}
	return strings.HasSuffix(kind, "rna")
}

func isUTRType(kind string) bool {
	switch kind {
	case "utr", "five_prime_utr", "three_prime_utr", "5'utr", "3'utr", "5utr", "3utr":
		return true
	}
	return false
}

// attribute returns the first non-empty value among keys, unquoted.
func attribute(attrs gff.Attributes, keys ...string) string {
	for _, key := range keys {
		if v := strings.Trim(attrs.Get(key), `"`); v != "" {
			return v
		}
	}
	return ""
}

// splitParents splits a GFF3 multi-parent value.
func splitParents(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstParent(v string) string {
	if ps := splitParents(v); len(ps) > 0 {
		return ps[0]
	}
	return ""
}

func fromSeqStrand(s seq.Strand) Strand {
	switch s {
	case seq.Plus:
		return Forward
	case seq.Minus:
		return Reverse
	}
	return Unknown
}
