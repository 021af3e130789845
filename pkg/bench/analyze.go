// Package bench analyzes DSMS result files for latency and throughput and
// compares multiple benchmark runs.
//
// The DSMS appends its TimeInterval bounds as two trailing columns that the
// header row does not name, so data rows carry two more fields than the
// header. The analyzer keys on the last two fields of each row.
package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LatencyStats summarizes one DSMS result file.
type LatencyStats struct {
	Records    int64
	Latencies  []float64 // per-window latency, milliseconds
	AvgLatency float64
	MinLatency float64
	MaxLatency float64

	// Throughput in windows per second over the full run span.
	Throughput float64
}

// Analyze reads a DSMS result file and computes latency and throughput from
// its window start/end timestamps.
func Analyze(path string) (*LatencyStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("bench: empty result file %q", path)
		}
		return nil, err
	}

	stats := &LatencyStats{}
	var sum float64
	var minStart, maxEnd float64
	first := true

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bench: malformed row in %q: %w", path, err)
		}
		if len(record) < 2 {
			continue
		}

		start, err1 := strconv.ParseFloat(record[len(record)-2], 64)
		end, err2 := strconv.ParseFloat(record[len(record)-1], 64)
		if err1 != nil || err2 != nil {
			continue
		}

		latency := end - start
		stats.Latencies = append(stats.Latencies, latency)
		stats.Records++
		sum += latency

		if first {
			minStart, maxEnd = start, end
			stats.MinLatency, stats.MaxLatency = latency, latency
			first = false
			continue
		}
		if start < minStart {
			minStart = start
		}
		if end > maxEnd {
			maxEnd = end
		}
		if latency < stats.MinLatency {
			stats.MinLatency = latency
		}
		if latency > stats.MaxLatency {
			stats.MaxLatency = latency
		}
	}

	if stats.Records == 0 {
		return nil, fmt.Errorf("bench: no parsable rows in %q", path)
	}

	stats.AvgLatency = sum / float64(stats.Records)
	if span := maxEnd - minStart; span > 0 {
		stats.Throughput = float64(stats.Records) / (span / 1000)
	}
	return stats, nil
}
