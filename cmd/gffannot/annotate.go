package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gffannot/internal/annotate"
	"github.com/inodb/gffannot/internal/cache"
	"github.com/inodb/gffannot/internal/diag"
	"github.com/inodb/gffannot/internal/duckdb"
	"github.com/inodb/gffannot/internal/genome"
	"github.com/inodb/gffannot/internal/output"
)

// Config keys for the annotate command.
const (
	keyPromoterSize   = "annotate.promoter_size"
	keyOperons        = "annotate.operons"
	keyOperonDistance = "annotate.operon_distance"
	keyFormat         = "annotate.format"
	keyTSS            = "annotate.tss"
	keyWorkers        = "annotate.workers"
	keyCacheDir       = "annotate.cache_dir"
	keyDB             = "annotate.db"
)

func newAnnotateCmd(global *globalOptions) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "annotate <genes.gff[.gz]> <chrom.sizes>",
		Short: "Partition chromosomes into functional intervals",
		Long: `Annotate every chromosome of the size table with CDS, UTR5, UTR3, intron,
promoter and intergenic intervals derived from the gene models, plus TSS sites.

Input GFF3, GTF/GFF2 and prokaryotic gene->CDS GFF files are accepted, plain or
gzipped. Output is 0-based half-open and tiles each chromosome exactly once.`,
		Example: `  gffannot annotate genes.gff3 chrom.sizes
  gffannot annotate -p 500 -f gff -o annotation.gff genes.gtf chrom.sizes
  gffannot annotate --operons --operon-distance 100 bacteria.gff sizes.txt
  gffannot annotate --db annot.duckdb --cache-dir ~/.gffannot genes.gff.gz chrom.sizes`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindAnnotateFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := annotateConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(global)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if outputFile == "" {
				return runAnnotate(logger, cfg, args[0], args[1], cmd.OutOrStdout())
			}
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			if err := runAnnotate(logger, cfg, args[0], args[1], f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output file: %w", err)
			}
			return nil
		},
	}

	defaults := annotate.DefaultConfig()
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Int64P("promoter-size", "p", defaults.PromoterSize, "Requested promoter length in bases")
	cmd.Flags().Bool("operons", false, "Suppress promoters inside operons")
	cmd.Flags().Int64("operon-distance", 0, "Maximum gap between operon members (required with --operons)")
	cmd.Flags().StringP("format", "f", "bed", "Output format: bed, gff")
	cmd.Flags().Bool("tss", defaults.EmitTSS, "Include TSS sites in the output")
	cmd.Flags().String("db", "", "Also store intervals in this DuckDB file")
	cmd.Flags().Int("workers", 0, "Chromosome workers (0 = all CPUs)")
	cmd.Flags().String("cache-dir", "", "Cache parsed gene models in this directory")

	return cmd
}

// bindAnnotateFlags binds the annotate flags to their config keys.
func bindAnnotateFlags(cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		keyPromoterSize:   "promoter-size",
		keyOperons:        "operons",
		keyOperonDistance: "operon-distance",
		keyFormat:         "format",
		keyTSS:            "tss",
		keyDB:             "db",
		keyWorkers:        "workers",
		keyCacheDir:       "cache-dir",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// annotateConfig reads the annotation settings from flags, env and config file.
func annotateConfig() annotate.Config {
	return annotate.Config{
		PromoterSize:   viper.GetInt64(keyPromoterSize),
		OperonsEnabled: viper.GetBool(keyOperons),
		OperonDistance: viper.GetInt64(keyOperonDistance),
		EmitTSS:        viper.GetBool(keyTSS),
		Workers:        viper.GetInt(keyWorkers),
	}
}

func runAnnotate(logger *zap.Logger, cfg annotate.Config, gffPath, sizesPath string, out io.Writer) error {
	g, err := genome.Load(sizesPath)
	if err != nil {
		return err
	}
	logger.Info("loaded chromosome sizes", zap.String("path", sizesPath), zap.Int("chromosomes", g.Len()))

	rep := &diag.Report{}
	c, err := loadGenes(logger, gffPath, viper.GetString(keyCacheDir), rep)
	if err != nil {
		return err
	}
	logger.Info("loaded gene models",
		zap.String("path", gffPath),
		zap.Int("genes", c.GeneCount()),
		zap.Int("transcripts", c.TranscriptCount()))

	var writer annotate.IntervalWriter
	switch format := viper.GetString(keyFormat); format {
	case "bed":
		writer = output.NewBEDWriter(out)
	case "gff":
		writer = output.NewGFFWriter(out)
	default:
		return fmt.Errorf("unknown output format %q (want bed or gff)", format)
	}

	if dbPath := viper.GetString(keyDB); dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		writer = annotate.NewMultiWriter(writer, duckdb.NewSink(store))
		logger.Info("storing intervals", zap.String("db", dbPath))
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	ann := annotate.NewAnnotator(cfg)
	ann.SetLogger(logger)
	annRep, err := ann.AnnotateAll(g, c, writer)
	rep.Merge(annRep)
	rep.Log(logger)
	if err != nil {
		return err
	}

	logger.Info("annotation complete",
		zap.Int("warnings", rep.Count(diag.Warning)),
		zap.Int("errors", rep.Count(diag.Error)))
	return nil
}

// loadGenes parses gffPath, going through the gob gene cache in cacheDir when
// one is configured.
func loadGenes(logger *zap.Logger, gffPath, cacheDir string, rep *diag.Report) (*cache.Cache, error) {
	c := cache.New()
	loader := cache.NewGFFLoader(gffPath)
	if cacheDir == "" {
		if err := loader.Load(c, rep); err != nil {
			return nil, err
		}
		return c, nil
	}

	fp, err := duckdb.StatFile(gffPath)
	if err != nil {
		return nil, fmt.Errorf("stat gene models: %w", err)
	}
	gc := duckdb.NewGeneCache(cacheDir, gffPath)
	if gc.Valid(fp) {
		err := gc.Load(c)
		if err == nil {
			logger.Info("using cached gene models", zap.String("dir", cacheDir))
			return c, nil
		}
		logger.Warn("gene cache unreadable, reparsing", zap.Error(err))
		c = cache.New()
	}

	if err := loader.Load(c, rep); err != nil {
		return nil, err
	}
	if err := gc.Write(c, fp); err != nil {
		logger.Warn("could not write gene cache", zap.Error(err))
	}
	return c, nil
}
