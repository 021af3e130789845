package inject

import (
	"math"
	"testing"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/config"
	"github.com/dqbench/dqbench/pkg/metric"
)

func testConfig() config.Quality {
	cfg := config.Default()
	cfg.Volatility = 2000
	cfg.Seed = 1
	return cfg
}

func makeChunk(start int64, n int) *model.Chunk {
	readings := make([]model.SensorReading, n)
	for i := range readings {
		idx := start + int64(i)
		readings[i] = model.SensorReading{
			Index:         idx,
			ValueID:       idx,
			SensorID:      7,
			Timestamp:     idx * 100,
			Value:         20 + float64(i%5),
			AvailableTime: idx * 100,
		}
	}
	return &model.Chunk{Start: start, Readings: readings}
}

func chunksEqual(a, b *model.Chunk) bool {
	if a.Start != b.Start || a.Len() != b.Len() {
		return false
	}
	for i := range a.Readings {
		if a.Readings[i] != b.Readings[i] {
			return false
		}
	}
	return true
}

func TestZeroPercentagesLeaveChunkUntouched(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0

	chunk := makeChunk(0, 500)
	original := makeChunk(0, 500)

	New(cfg).Apply(chunk)

	if !chunksEqual(chunk, original) {
		t.Error("injection with zero percentages modified the chunk")
	}
}

func TestSameSeedSameOutput(t *testing.T) {
	cfg := testConfig()

	a := makeChunk(0, 1000)
	b := makeChunk(0, 1000)

	New(cfg).Apply(a)
	New(cfg).Apply(b)

	if !chunksEqual(a, b) {
		t.Error("two runs with the same seed diverged")
	}
}

func TestDifferentSeedDifferentOutput(t *testing.T) {
	cfg := testConfig()

	a := makeChunk(0, 1000)
	New(cfg).Apply(a)

	cfg.Seed = 2
	b := makeChunk(0, 1000)
	New(cfg).Apply(b)

	if chunksEqual(a, b) {
		t.Error("different seeds produced identical output")
	}
}

func TestChunkOrderIndependence(t *testing.T) {
	cfg := testConfig()

	// Apply to two chunks in both orders; each chunk's sub-streams are keyed
	// by its start index, so order must not matter.
	a1, a2 := makeChunk(0, 300), makeChunk(300, 300)
	in := New(cfg)
	in.Apply(a1)
	in.Apply(a2)

	b1, b2 := makeChunk(0, 300), makeChunk(300, 300)
	in2 := New(cfg)
	in2.Apply(b2)
	in2.Apply(b1)

	if !chunksEqual(a1, b1) || !chunksEqual(a2, b2) {
		t.Error("injection result depends on chunk processing order")
	}
}

func TestDefectCountsAreExact(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0.05
	cfg.MissingPercentage = 0.1
	cfg.OutdatedPercentage = 0.2

	const n = 997 // prime, exercises the ceil
	chunk := makeChunk(0, n)

	in := New(cfg)
	in.RecordGroundTruth()
	in.Apply(chunk)

	counts := map[model.DefectKind]int{}
	for _, mark := range in.Marks() {
		counts[mark.Kind]++
	}

	wantOutliers := int(math.Ceil(0.05 * n))
	wantMissing := int(math.Ceil(0.1 * n))
	wantDelays := int(math.Ceil(0.2 * n))

	if counts[model.DefectOutlier] != wantOutliers {
		t.Errorf("outliers = %d, want %d", counts[model.DefectOutlier], wantOutliers)
	}
	if counts[model.DefectMissing] != wantMissing {
		t.Errorf("missing = %d, want %d", counts[model.DefectMissing], wantMissing)
	}
	if counts[model.DefectDelay] != wantDelays {
		t.Errorf("delays = %d, want %d", counts[model.DefectDelay], wantDelays)
	}
}

func TestMissingNullsOnlyValue(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.OutdatedPercentage = 0
	cfg.MissingPercentage = 0.1

	chunk := makeChunk(0, 200)
	original := makeChunk(0, 200)

	New(cfg).Apply(chunk)

	var nulled int
	for i := range chunk.Readings {
		r := &chunk.Readings[i]
		o := &original.Readings[i]
		if r.ValueID != o.ValueID || r.SensorID != o.SensorID || r.Timestamp != o.Timestamp {
			t.Fatalf("row %d: identity fields changed", i)
		}
		if r.IsNull(model.FieldValue) {
			nulled++
			if r.IsNull(model.FieldValueID) || r.IsNull(model.FieldSensorID) {
				t.Errorf("row %d: missing defect nulled identity fields", i)
			}
		}
	}
	if want := int(math.Ceil(0.1 * 200)); nulled != want {
		t.Errorf("nulled rows = %d, want %d", nulled, want)
	}
}

func TestDelayedRowsExceedVolatility(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0.2

	chunk := makeChunk(0, 500)
	in := New(cfg)
	in.RecordGroundTruth()
	in.Apply(chunk)

	for _, mark := range in.Marks() {
		if mark.Kind != model.DefectDelay {
			continue
		}
		r := &chunk.Readings[mark.Index-chunk.Start]
		if r.Currency() < cfg.Volatility {
			t.Errorf("row %d: currency %d below volatility %d after delay",
				mark.Index, r.Currency(), cfg.Volatility)
		}
	}
}

func TestOutliersSkipNullValues(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0.5
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0

	chunk := makeChunk(0, 100)
	for i := 0; i < 50; i++ {
		chunk.Readings[i].SetNull(model.FieldValue)
		chunk.Readings[i].Value = 0
	}

	in := New(cfg)
	in.RecordGroundTruth()
	in.Apply(chunk)

	for _, mark := range in.Marks() {
		r := &chunk.Readings[mark.Index-chunk.Start]
		if r.IsNull(model.FieldValue) {
			t.Errorf("row %d: outlier applied to a null value", mark.Index)
		}
	}
	// 50 non-null candidates at 50%.
	if got := len(in.Marks()); got != 25 {
		t.Errorf("outliers = %d, want 25", got)
	}
}

func TestOutlierInvalidatesRawValueText(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0.1
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0

	chunk := makeChunk(0, 100)
	for i := range chunk.Readings {
		chunk.Readings[i].ValueText = "20.50"
	}

	in := New(cfg)
	in.RecordGroundTruth()
	in.Apply(chunk)

	perturbed := map[int64]bool{}
	for _, mark := range in.Marks() {
		perturbed[mark.Index] = true
	}

	for i := range chunk.Readings {
		r := &chunk.Readings[i]
		if perturbed[r.Index] {
			if r.ValueText != "" {
				t.Errorf("row %d: perturbed value still carries stale raw text %q", r.Index, r.ValueText)
			}
		} else if r.ValueText != "20.50" {
			t.Errorf("row %d: untouched value lost its raw text", r.Index)
		}
	}
}

func TestSynthesizeAvailability(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0

	chunk := makeChunk(0, 300)
	in := New(cfg)
	in.SynthesizeAvailability = true
	in.Apply(chunk)

	for i := range chunk.Readings {
		r := &chunk.Readings[i]
		gap := r.Currency()
		if gap < 0 || gap >= cfg.Volatility {
			t.Fatalf("row %d: synthesized gap %d outside [0,%d)", i, gap, cfg.Volatility)
		}
	}
}

func TestSampleProperties(t *testing.T) {
	rng := NewStreams(1).Chunk(familyOutlier, 0)

	picked := sample(rng, 100, 10)
	if len(picked) != 10 {
		t.Fatalf("len = %d, want 10", len(picked))
	}
	seen := map[int]bool{}
	for i, idx := range picked {
		if idx < 0 || idx >= 100 {
			t.Errorf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Errorf("index %d picked twice", idx)
		}
		seen[idx] = true
		if i > 0 && picked[i-1] >= idx {
			t.Errorf("indices not strictly ascending at %d", i)
		}
	}

	if got := sample(rng, 5, 10); len(got) != 5 {
		t.Errorf("oversized k: len = %d, want 5", len(got))
	}
	if got := sample(rng, 5, 0); got != nil {
		t.Errorf("k=0: got %v, want nil", got)
	}
}

func TestInjectedDefectsDriveMetrics(t *testing.T) {
	// One chunk that is exactly one window: the measured completeness must
	// equal 1 - ceil(p*n)/n, and delayed rows must pull timeliness below 1.
	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.MissingPercentage = 0.1
	cfg.OutdatedPercentage = 0.2

	const n = 1000
	chunk := makeChunk(0, n)
	New(cfg).Apply(chunk)

	asm := metric.NewAssembler(n, cfg.Volatility)
	windows := asm.Add(chunk)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}

	wm := windows[0]
	wantCompleteness := 1 - math.Ceil(0.1*n)/n
	if math.Abs(wm.Completeness-wantCompleteness) > 1e-9 {
		t.Errorf("Completeness = %v, want %v", wm.Completeness, wantCompleteness)
	}
	if wm.Timeliness >= 1 {
		t.Errorf("Timeliness = %v, want < 1 with delayed rows", wm.Timeliness)
	}
}

func TestCeilFrac(t *testing.T) {
	tests := []struct {
		p    float64
		n    int
		want int
	}{
		{0, 100, 0},
		{0.05, 100, 5},
		{0.05, 101, 6},
		{0.1, 1, 1},
		{1, 50, 50},
		{0.5, 0, 0},
	}
	for _, tt := range tests {
		if got := ceilFrac(tt.p, tt.n); got != tt.want {
			t.Errorf("ceilFrac(%v, %d) = %d, want %d", tt.p, tt.n, got, tt.want)
		}
	}
}
