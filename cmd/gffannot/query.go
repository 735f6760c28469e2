package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gffannot/internal/duckdb"
	"github.com/inodb/gffannot/internal/output"
)

const keyQueryDB = "query.db"

func newQueryCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query --db <file.duckdb> <chrom:pos>...",
		Short: "Show the intervals covering genomic positions",
		Long: `Look up stored annotation intervals by position. Positions are 1-based,
as in genome browsers; output rows are 0-based half-open BED.`,
		Example: `  gffannot query --db annot.duckdb chr1:2050
  gffannot query --db annot.duckdb chr1:1 chr2:1000000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(global)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			w := output.NewBEDWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}
			for _, arg := range args {
				chrom, pos, err := parseLocus(arg)
				if err != nil {
					return err
				}
				hits, err := store.LookupPosition(chrom, pos)
				if err != nil {
					return err
				}
				if len(hits) == 0 {
					logger.Warn("no interval covers position", zap.String("locus", arg))
				}
				for _, iv := range hits {
					if err := w.Write(iv); err != nil {
						return err
					}
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("db", "", "DuckDB file written by annotate --db")

	return cmd
}

func newSummaryCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary --db <file.duckdb>",
		Short: "Show interval counts and coverage per feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.FeatureSummary()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "#feature\tintervals\tbases")
			for _, st := range stats {
				fmt.Fprintf(out, "%s\t%d\t%d\n", st.Feature, st.Count, st.Bases)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "DuckDB file written by annotate --db")

	return cmd
}

// openStore opens the store named by the command's --db flag or the
// query.db config key.
func openStore(cmd *cobra.Command) (*duckdb.Store, error) {
	if err := viper.BindPFlag(keyQueryDB, cmd.Flags().Lookup("db")); err != nil {
		return nil, err
	}
	path := viper.GetString(keyQueryDB)
	if path == "" {
		return nil, fmt.Errorf("--db is required")
	}
	return duckdb.Open(path)
}

// parseLocus parses "chrom:pos" with a 1-based position and returns the
// 0-based coordinate.
func parseLocus(s string) (string, int64, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return "", 0, fmt.Errorf("invalid locus %q (want chrom:pos)", s)
	}
	pos, err := strconv.ParseInt(strings.ReplaceAll(s[i+1:], ",", ""), 10, 64)
	if err != nil || pos < 1 {
		return "", 0, fmt.Errorf("invalid position in %q", s)
	}
	return s[:i], pos - 1, nil
}
