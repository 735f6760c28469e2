package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGTF = `chr1	test	exon	2001	3000	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	test	CDS	2101	2900	.	+	0	gene_id "g1"; transcript_id "t1";
chrUn	test	exon	11	20	.	+	.	gene_id "lost"; transcript_id "t9";
`

const testOperonGFF = `##gff-version 3
chr1	test	gene	1001	1200	.	+	.	ID=a
chr1	test	CDS	1001	1200	.	+	0	Parent=a
chr1	test	gene	1251	1500	.	+	.	ID=b
chr1	test	CDS	1251	1500	.	+	0	Parent=b
`

// execute runs the root command with a fresh viper state and an empty
// config file so the user's home config never leaks into tests.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("{}\n"), 0644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", cfg))
	err := root.Execute()
	return out.String(), err
}

func writeInputs(t *testing.T, gff string) (gffPath, sizesPath string) {
	t.Helper()
	dir := t.TempDir()
	gffPath = filepath.Join(dir, "genes.gtf")
	sizesPath = filepath.Join(dir, "chrom.sizes")
	require.NoError(t, os.WriteFile(gffPath, []byte(gff), 0644))
	require.NoError(t, os.WriteFile(sizesPath, []byte("chr1\t10000\n"), 0644))
	return gffPath, sizesPath
}

func TestAnnotate_BED(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)

	out, err := execute(t, "annotate", "-p", "500", gff, sizes)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"#chrom\tstart\tend\tfeature\tgene\tstrand\tnote",
		"chr1\t0\t1500\tintergenic\t.\t.\t.",
		"chr1\t1500\t2000\tpromoter\tg1\t+\t.",
		"chr1\t2000\t2001\tTSS\tg1\t+\t.",
		"chr1\t2000\t2100\tUTR5\tg1\t+\t.",
		"chr1\t2100\t2900\tCDS\tg1\t+\t.",
		"chr1\t2900\t3000\tUTR3\tg1\t+\t.",
		"chr1\t3000\t10000\tintergenic\t.\t.\t.",
		"",
	}, "\n"), out)
}

func TestAnnotate_OutputFileWithoutTSS(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)
	outPath := filepath.Join(t.TempDir(), "annot.bed")

	_, err := execute(t, "annotate", "--tss=false", "-o", outPath, gff, sizes)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "TSS")
	assert.Contains(t, string(data), "chr1\t1700\t2000\tpromoter\tg1\t+\t.")
}

func TestAnnotate_Operons(t *testing.T) {
	gff, sizes := writeInputs(t, testOperonGFF)

	out, err := execute(t, "annotate", "--operons", "--operon-distance", "500", gff, sizes)
	require.NoError(t, err)

	assert.Contains(t, out, "chr1\t1200\t1250\tintergenic\tb\t+\toperon")
	assert.NotContains(t, out, "TSS\tb")
	assert.Contains(t, out, "chr1\t1000\t1001\tTSS\ta\t+\t.")
}

func TestAnnotate_GFFFormat(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)

	out, err := execute(t, "annotate", "-f", "gff", gff, sizes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "##gff-version 2\n"))
	assert.Contains(t, out, "chr1\tgffannot\tCDS\t2101\t2900")
}

func TestAnnotate_InvalidConfig(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)

	_, err := execute(t, "annotate", "--operons", gff, sizes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = execute(t, "annotate", "-p", "0", gff, sizes)
	require.Error(t, err)

	_, err = execute(t, "annotate", "-f", "vcf", gff, sizes)
	assert.ErrorContains(t, err, "unknown output format")
}

func TestAnnotate_InvalidConfigKeepsOutputFile(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)
	dir := t.TempDir()

	existing := filepath.Join(dir, "existing.bed")
	require.NoError(t, os.WriteFile(existing, []byte("keep\n"), 0644))
	_, err := execute(t, "annotate", "--operons", "-o", existing, gff, sizes)
	require.Error(t, err)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", string(data))

	fresh := filepath.Join(dir, "fresh.bed")
	_, err = execute(t, "annotate", "-p", "-5", "-o", fresh, gff, sizes)
	require.Error(t, err)
	assert.NoFileExists(t, fresh)
}

func TestAnnotate_MissingInputs(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)

	_, err := execute(t, "annotate", gff, filepath.Join(t.TempDir(), "missing.sizes"))
	assert.Error(t, err)

	_, err = execute(t, "annotate", filepath.Join(t.TempDir(), "missing.gff"), sizes)
	assert.Error(t, err)

	_, err = execute(t, "annotate", gff)
	assert.Error(t, err)
}

func TestAnnotate_GeneCache(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)
	cacheDir := t.TempDir()

	first, err := execute(t, "annotate", "--cache-dir", cacheDir, gff, sizes)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cacheDir, "genes.gtf.genes.gob"))

	second, err := execute(t, "annotate", "--cache-dir", cacheDir, gff, sizes)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnnotate_QueryAndSummary(t *testing.T) {
	gff, sizes := writeInputs(t, testGTF)
	db := filepath.Join(t.TempDir(), "annot.duckdb")

	_, err := execute(t, "annotate", "-p", "500", "--db", db, gff, sizes)
	require.NoError(t, err)

	out, err := execute(t, "query", "--db", db, "chr1:2050", "chr1:2001")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"#chrom\tstart\tend\tfeature\tgene\tstrand\tnote",
		"chr1\t2000\t2100\tUTR5\tg1\t+\t.",
		"chr1\t2000\t2001\tTSS\tg1\t+\t.",
		"chr1\t2000\t2100\tUTR5\tg1\t+\t.",
	}, lines)

	out, err = execute(t, "summary", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "CDS\t1\t800\n")
	assert.Contains(t, out, "intergenic\t2\t8500\n")

	_, err = execute(t, "summary")
	assert.ErrorContains(t, err, "--db is required")
}

func TestConfigSetGet(t *testing.T) {
	viper.Reset()
	cfg := filepath.Join(t.TempDir(), "gffannot.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("{}\n"), 0644))

	run := func(args ...string) string {
		viper.Reset()
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetArgs(append(args, "--config", cfg))
		require.NoError(t, root.Execute())
		return out.String()
	}

	run("config", "set", "annotate.promoter_size", "500")
	run("config", "set", "annotate.operons", "yes")

	assert.Equal(t, "500\n", run("config", "get", "annotate.promoter_size"))
	assert.Equal(t, "true\n", run("config", "get", "annotate.operons"))
	shown := run("config")
	assert.Contains(t, shown, "promoter_size: 500")
	assert.Contains(t, shown, "# annotate.workers (unset): chromosome workers (0 = all CPUs)\n")
	assert.NotContains(t, shown, "annotate.operons (unset)")

	require.NoError(t, os.WriteFile(cfg, []byte("annotate:\n  promoter_size: 400\nlegacy:\n  assembly: GRCh38\n"), 0644))
	shown = run("config")
	assert.Contains(t, shown, "# legacy.assembly is not used by gffannot\n")

	viper.Reset()
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"config", "set", "annotate.promotor_size", "1", "--config", cfg})
	assert.ErrorContains(t, root.Execute(), "unknown config key")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gffannot version dev (none) built unknown\n", out)
}

func TestParseLocus(t *testing.T) {
	tests := []struct {
		in      string
		chrom   string
		pos     int64
		wantErr bool
	}{
		{in: "chr1:1", chrom: "chr1", pos: 0},
		{in: "chr1:1,000", chrom: "chr1", pos: 999},
		{in: "HLA-A*01:01:5", chrom: "HLA-A*01:01", pos: 4},
		{in: "chr1", wantErr: true},
		{in: "chr1:", wantErr: true},
		{in: ":5", wantErr: true},
		{in: "chr1:0", wantErr: true},
		{in: "chr1:x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			chrom, pos, err := parseLocus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, chrom)
			assert.Equal(t, tt.pos, pos)
		})
	}
}
