package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/gffannot/internal/annotate"
	"github.com/inodb/gffannot/internal/cache"
)

// FeatureStat is the coverage of one feature label.
type FeatureStat struct {
	Feature annotate.Feature
	Count   int64 // number of intervals
	Bases   int64 // total bases covered
}

// WriteIntervals batch-inserts intervals into DuckDB using the Appender API.
func (s *Store) WriteIntervals(intervals []annotate.Interval) error {
	if len(intervals) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "intervals")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, iv := range intervals {
		if err := appender.AppendRow(
			iv.Chrom, iv.Start, iv.End, string(iv.Feature),
			iv.Strand.String(), iv.GeneID, iv.Note,
		); err != nil {
			return fmt.Errorf("append interval: %w", err)
		}
	}

	return appender.Flush()
}

// ClearIntervals removes all stored intervals.
func (s *Store) ClearIntervals() error {
	_, err := s.db.Exec("DELETE FROM intervals")
	return err
}

// LookupPosition returns the intervals covering the 0-based position pos,
// ordered by start then end.
func (s *Store) LookupPosition(chrom string, pos int64) ([]annotate.Interval, error) {
	rows, err := s.db.Query(`SELECT
		chrom, chrom_start, chrom_end, feature, strand, gene_id, note
		FROM intervals
		WHERE chrom=? AND chrom_start<=? AND chrom_end>?
		ORDER BY chrom_start, chrom_end`,
		chrom, pos, pos)
	if err != nil {
		return nil, fmt.Errorf("query position: %w", err)
	}
	defer rows.Close()

	var out []annotate.Interval
	for rows.Next() {
		var iv annotate.Interval
		var feature, strand string
		if err := rows.Scan(&iv.Chrom, &iv.Start, &iv.End, &feature, &strand, &iv.GeneID, &iv.Note); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		iv.Feature = annotate.Feature(feature)
		iv.Strand = cache.ParseStrand(strand)
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}
	return out, nil
}

// FeatureSummary returns interval counts and covered bases per feature,
// ordered by feature name.
func (s *Store) FeatureSummary() ([]FeatureStat, error) {
	rows, err := s.db.Query(`SELECT
		feature, COUNT(*), CAST(SUM(chrom_end - chrom_start) AS BIGINT)
		FROM intervals
		GROUP BY feature
		ORDER BY feature`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var stats []FeatureStat
	for rows.Next() {
		var st FeatureStat
		var feature string
		if err := rows.Scan(&feature, &st.Count, &st.Bases); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		st.Feature = annotate.Feature(feature)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return stats, nil
}
