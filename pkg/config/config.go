// Package config loads and validates the quality benchmark configuration.
// A Quality value is immutable once loaded: it is passed by value into the
// injector and calculator, never held as mutable process-wide state.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Quality holds the defect-injection and measurement parameters.
// Keys match the benchmark configuration file format (all numeric).
type Quality struct {
	// Deviation is the standard deviation of injected outlier noise,
	// in value units.
	Deviation float64 `yaml:"DEVIATION"`

	// OutlierFactor scales Deviation to produce the outlier magnitude.
	OutlierFactor float64 `yaml:"OUTLIER_FACTOR"`

	// OutlierPercentage is the fraction of rows per chunk that receive an
	// outlier defect, in [0,1].
	OutlierPercentage float64 `yaml:"OUTLIER_PERCENTAGE"`

	// MissingPercentage is the fraction of rows per chunk whose value is
	// nulled, in [0,1].
	MissingPercentage float64 `yaml:"MISSING_PERCENTAGE"`

	// Volatility is the timeliness decay horizon in milliseconds. A reading
	// whose availability gap reaches Volatility scores zero.
	Volatility int64 `yaml:"VOLATILITY"`

	// OutdatedPercentage is the fraction of rows per chunk delayed beyond
	// Volatility, in [0,1].
	OutdatedPercentage float64 `yaml:"OUTDATED_PERCENTAGE"`

	// WindowSize is the tumbling window length in rows.
	WindowSize int `yaml:"WINDOW_SIZE"`

	// ChunkSize is the number of rows read per chunk. Purely a memory
	// bound; windows may span chunks.
	ChunkSize int `yaml:"CHUNK_SIZE"`

	// Seed drives the injector's partitioned random streams. Runs with the
	// same configuration and seed produce identical output.
	Seed int64 `yaml:"SEED"`
}

// Default returns the stock benchmark parameters.
func Default() Quality {
	return Quality{
		Deviation:          0.05,
		OutlierFactor:      2,
		OutlierPercentage:  0.05,
		MissingPercentage:  0.1,
		Volatility:         4000,
		OutdatedPercentage: 0.2,
		WindowSize:         50000,
		ChunkSize:          30000,
		Seed:               1,
	}
}

// Load reads a YAML configuration file, applies DQBENCH_* environment
// overrides, and validates ranges. An empty path yields the defaults.
func Load(path string) (Quality, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from DQBENCH_* environment variables.
func (q *Quality) applyEnv() {
	if v, ok := envFloat("DQBENCH_DEVIATION"); ok {
		q.Deviation = v
	}
	if v, ok := envFloat("DQBENCH_OUTLIER_FACTOR"); ok {
		q.OutlierFactor = v
	}
	if v, ok := envFloat("DQBENCH_OUTLIER_PERCENTAGE"); ok {
		q.OutlierPercentage = v
	}
	if v, ok := envFloat("DQBENCH_MISSING_PERCENTAGE"); ok {
		q.MissingPercentage = v
	}
	if v, ok := envFloat("DQBENCH_OUTDATED_PERCENTAGE"); ok {
		q.OutdatedPercentage = v
	}
	if v, ok := envInt("DQBENCH_VOLATILITY"); ok {
		q.Volatility = v
	}
	if v, ok := envInt("DQBENCH_WINDOW_SIZE"); ok {
		q.WindowSize = int(v)
	}
	if v, ok := envInt("DQBENCH_CHUNK_SIZE"); ok {
		q.ChunkSize = int(v)
	}
	if v, ok := envInt("DQBENCH_SEED"); ok {
		q.Seed = v
	}
}

func envFloat(key string) (float64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(key string) (int64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate checks all parameter ranges. Violations are fatal and reported
// before any processing begins.
func (q Quality) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"OUTLIER_PERCENTAGE", q.OutlierPercentage},
		{"MISSING_PERCENTAGE", q.MissingPercentage},
		{"OUTDATED_PERCENTAGE", q.OutdatedPercentage},
	} {
		if p.value < 0 || p.value > 1 {
			return &RangeError{Field: p.name, Value: p.value, Bounds: "[0,1]"}
		}
	}

	if q.Deviation < 0 {
		return &RangeError{Field: "DEVIATION", Value: q.Deviation, Bounds: ">= 0"}
	}
	if q.OutlierFactor < 0 {
		return &RangeError{Field: "OUTLIER_FACTOR", Value: q.OutlierFactor, Bounds: ">= 0"}
	}
	if q.Volatility <= 0 {
		return &RangeError{Field: "VOLATILITY", Value: float64(q.Volatility), Bounds: "> 0"}
	}
	if q.WindowSize <= 0 {
		return &RangeError{Field: "WINDOW_SIZE", Value: float64(q.WindowSize), Bounds: "> 0"}
	}
	if q.ChunkSize <= 0 {
		return &RangeError{Field: "CHUNK_SIZE", Value: float64(q.ChunkSize), Bounds: "> 0"}
	}
	return nil
}

// RangeError reports a configuration parameter outside its allowed range.
type RangeError struct {
	Field  string
	Value  float64
	Bounds string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("config: %s = %v out of range (want %s)", e.Field, e.Value, e.Bounds)
}
