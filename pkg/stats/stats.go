// Package stats computes whole-file column statistics for sensor datasets
// using DuckDB's CSV reader. Used by the show-stats command to sanity-check
// inputs before a benchmark run.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// ColumnStats holds statistics for a single column.
type ColumnStats struct {
	Name          string
	Type          string
	RowCount      int64
	NullCount     int64
	DistinctCount int64
	Entropy       float64 // Shannon entropy in bits
	NullPct       float64
	MinValue      string
	MaxValue      string
}

// FileStats holds statistics for an entire dataset.
type FileStats struct {
	Path        string
	RowCount    int64
	ColumnCount int
	Columns     []ColumnStats
	ComputeTime time.Duration
}

// Analyzer runs statistics queries against an in-memory DuckDB instance.
type Analyzer struct {
	db *sql.DB
}

// NewAnalyzer opens an in-memory DuckDB connection.
func NewAnalyzer() (*Analyzer, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	db.Exec("SET enable_object_cache = true")
	return &Analyzer{db: db}, nil
}

// Close releases the database.
func (a *Analyzer) Close() error {
	return a.db.Close()
}

// AnalyzeCSV computes per-column statistics for a CSV file.
func (a *Analyzer) AnalyzeCSV(ctx context.Context, path string) (*FileStats, error) {
	start := time.Now()
	stats := &FileStats{Path: path}

	err := a.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM read_csv_auto('%s', header=true, ignore_errors=true)`,
		escapePath(path))).Scan(&stats.RowCount)
	if err != nil {
		return nil, fmt.Errorf("stats: row count failed: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(
		`DESCRIBE SELECT * FROM read_csv_auto('%s', header=true, sample_size=1000)`,
		escapePath(path)))
	if err != nil {
		return nil, err
	}

	var columns, types []string
	for rows.Next() {
		var name, dtype string
		var null, key, dflt, extra interface{}
		rows.Scan(&name, &dtype, &null, &key, &dflt, &extra)
		columns = append(columns, name)
		types = append(types, dtype)
	}
	rows.Close()

	stats.ColumnCount = len(columns)
	for i, col := range columns {
		cs, err := a.analyzeColumn(ctx, path, col, types[i])
		if err != nil {
			continue
		}
		stats.Columns = append(stats.Columns, *cs)
	}

	stats.ComputeTime = time.Since(start)
	return stats, nil
}

func (a *Analyzer) analyzeColumn(ctx context.Context, path, column, dtype string) (*ColumnStats, error) {
	cs := &ColumnStats{Name: column, Type: dtype}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) as total,
			COUNT(*) - COUNT("%s") as nulls,
			COUNT(DISTINCT "%s") as distinct_count,
			COALESCE(entropy("%s"::VARCHAR), 0) as entropy,
			COALESCE(MIN("%s")::VARCHAR, '') as min_value,
			COALESCE(MAX("%s")::VARCHAR, '') as max_value
		FROM read_csv_auto('%s', header=true, ignore_errors=true)
	`, column, column, column, column, column, escapePath(path))

	err := a.db.QueryRowContext(ctx, query).Scan(
		&cs.RowCount, &cs.NullCount, &cs.DistinctCount, &cs.Entropy,
		&cs.MinValue, &cs.MaxValue)
	if err != nil {
		return nil, err
	}

	if cs.RowCount > 0 {
		cs.NullPct = float64(cs.NullCount) / float64(cs.RowCount) * 100
	}
	return cs, nil
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
