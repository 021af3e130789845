// Package inject degrades sensor data with controlled, reproducible quality
// defects: outliers, missing values and availability delays.
//
// All randomness comes from named sub-streams derived from one seed (see
// Streams), consumed in a fixed order: selection first, then per-row draws in
// ascending row order. Two runs with the same configuration and seed produce
// identical output row for row.
package inject

import (
	"math"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/config"
)

// Injector mutates chunks in place, applying the three defect families
// independently. Defects may stack on the same row.
type Injector struct {
	cfg     config.Quality
	streams *Streams

	// SynthesizeAvailability generates the available_time column as
	// timestamp + U[0, volatility) before any delay defects. Enabled for
	// raw inputs that do not carry the column yet.
	SynthesizeAvailability bool

	recordMarks bool
	marks       []model.DefectMark
}

// New creates an injector for the given configuration. The configuration's
// seed owns the random source; the injector must not be shared across runs.
func New(cfg config.Quality) *Injector {
	return &Injector{
		cfg:     cfg,
		streams: NewStreams(cfg.Seed),
	}
}

// RecordGroundTruth enables per-row defect marks for validating the injector
// itself. Not needed for verification against the DSMS.
func (in *Injector) RecordGroundTruth() { in.recordMarks = true }

// Marks returns the recorded ground-truth defect marks.
func (in *Injector) Marks() []model.DefectMark { return in.marks }

// Apply degrades one chunk. Chunks may be processed in any order or in
// parallel; each defect family draws from a sub-stream keyed by the chunk's
// start index, so results do not depend on scheduling.
func (in *Injector) Apply(chunk *model.Chunk) {
	if chunk.Len() == 0 {
		return
	}
	if in.SynthesizeAvailability {
		in.synthesizeAvailability(chunk)
	}
	in.injectOutliers(chunk)
	in.injectMissing(chunk)
	in.injectDelays(chunk)
}

// synthesizeAvailability assigns available_time = timestamp + U[0, volatility)
// to every row, modeling normal arrival jitter inside the decay horizon.
func (in *Injector) synthesizeAvailability(chunk *model.Chunk) {
	rng := in.streams.Chunk(familyAvailability, chunk.Start)
	for i := range chunk.Readings {
		r := &chunk.Readings[i]
		r.AvailableTime = r.Timestamp + rng.Int63n(in.cfg.Volatility)
	}
}

// injectOutliers perturbs ceil(outlier_percentage x group size) non-null
// values by sign x outlier_factor x |N(0, deviation)|.
func (in *Injector) injectOutliers(chunk *model.Chunk) {
	if in.cfg.OutlierPercentage <= 0 {
		return
	}

	candidates := make([]int, 0, chunk.Len())
	for i := range chunk.Readings {
		if !chunk.Readings[i].IsNull(model.FieldValue) {
			candidates = append(candidates, i)
		}
	}
	k := ceilFrac(in.cfg.OutlierPercentage, len(candidates))
	if k == 0 {
		return
	}

	rng := in.streams.Chunk(familyOutlier, chunk.Start)
	for _, ci := range sample(rng, len(candidates), k) {
		r := &chunk.Readings[candidates[ci]]

		sign := 1.0
		if rng.Intn(2) == 1 {
			sign = -1.0
		}
		magnitude := math.Abs(rng.NormFloat64() * in.cfg.Deviation)
		offset := sign * in.cfg.OutlierFactor * magnitude

		r.Value += offset
		r.ValueText = ""
		in.mark(r.Index, model.DefectOutlier, offset)
	}
}

// injectMissing nulls the value of ceil(missing_percentage x group size)
// rows. The row stays in the stream with its identity fields intact; only
// value is nulled, which is what the completeness predicate counts.
func (in *Injector) injectMissing(chunk *model.Chunk) {
	if in.cfg.MissingPercentage <= 0 {
		return
	}
	k := ceilFrac(in.cfg.MissingPercentage, chunk.Len())
	if k == 0 {
		return
	}

	rng := in.streams.Chunk(familyMissing, chunk.Start)
	for _, i := range sample(rng, chunk.Len(), k) {
		r := &chunk.Readings[i]
		r.SetNull(model.FieldValue)
		r.Value = 0
		r.ValueText = ""
		in.mark(r.Index, model.DefectMissing, 0)
	}
}

// injectDelays pushes available_time of ceil(outdated_percentage x group
// size) rows past the volatility horizon, guaranteeing those rows score zero
// timeliness.
func (in *Injector) injectDelays(chunk *model.Chunk) {
	if in.cfg.OutdatedPercentage <= 0 {
		return
	}
	k := ceilFrac(in.cfg.OutdatedPercentage, chunk.Len())
	if k == 0 {
		return
	}

	rng := in.streams.Chunk(familyDelay, chunk.Start)
	for _, i := range sample(rng, chunk.Len(), k) {
		r := &chunk.Readings[i]

		// One extra draw per selected row regardless of the row's current
		// gap, so the stream position depends only on the selection.
		extra := rng.Int63n(in.cfg.Volatility)
		offset := extra
		if gap := r.Currency(); gap < in.cfg.Volatility {
			offset += in.cfg.Volatility - gap
		}

		r.AvailableTime += offset
		in.mark(r.Index, model.DefectDelay, float64(offset))
	}
}

func (in *Injector) mark(index int64, kind model.DefectKind, offset float64) {
	if !in.recordMarks {
		return
	}
	in.marks = append(in.marks, model.DefectMark{Index: index, Kind: kind, Offset: offset})
}

// ceilFrac returns ceil(p*n), the exact defect count for a group of n rows.
func ceilFrac(p float64, n int) int {
	if p <= 0 || n <= 0 {
		return 0
	}
	k := int(math.Ceil(p * float64(n)))
	if k > n {
		k = n
	}
	return k
}
