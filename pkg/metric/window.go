package metric

import (
	"github.com/dqbench/dqbench/internal/model"
)

// Assembler cuts the global row stream into count-based tumbling windows and
// computes metrics for each. Chunk boundaries are invisible here: rows are
// buffered until a full window is available, so a window may span any number
// of chunks. Window assembly is strictly sequential over the global row
// index even if upstream stages run in parallel.
type Assembler struct {
	windowSize int
	volatility int64

	buf     []model.SensorReading
	ordinal int64

	// scratch buffers reused across windows
	values []float64
	devs   []float64
}

// NewAssembler creates a window assembler. windowSize and volatility must be
// positive (validated by config before any processing starts).
func NewAssembler(windowSize int, volatility int64) *Assembler {
	return &Assembler{
		windowSize: windowSize,
		volatility: volatility,
		buf:        make([]model.SensorReading, 0, windowSize),
		values:     make([]float64, 0, windowSize),
		devs:       make([]float64, 0, windowSize),
	}
}

// Add buffers a chunk and returns the metrics of every window the chunk
// completed, in order.
func (a *Assembler) Add(chunk *model.Chunk) []model.WindowMetrics {
	a.buf = append(a.buf, chunk.Readings...)

	var out []model.WindowMetrics
	for len(a.buf) >= a.windowSize {
		window := a.buf[:a.windowSize]
		out = append(out, a.compute(window))

		// Shift the remainder to the front; the buffer never exceeds
		// windowSize+chunkSize rows.
		n := copy(a.buf, a.buf[a.windowSize:])
		a.buf = a.buf[:n]
		a.ordinal++
	}
	return out
}

// Remainder returns the trailing rows that do not fill a window. They are
// dropped, matching the DSMS tumbling operator, which emits full windows
// only.
func (a *Assembler) Remainder() int { return len(a.buf) }

// compute evaluates the accuracy, completeness and timeliness pipeline over
// one full window.
func (a *Assembler) compute(window []model.SensorReading) model.WindowMetrics {
	n := len(window)
	m := model.WindowMetrics{
		Key: model.WindowKey{
			Ordinal:      a.ordinal,
			FirstValueID: window[0].ValueID,
			LastValueID:  window[n-1].ValueID,
		},
	}

	// Completeness: rows with any required field null.
	// Timeliness: per-row decay score, clamped at zero.
	var incomplete int
	var timelinessSum float64
	a.values = a.values[:0]
	for i := range window {
		r := &window[i]
		if r.Incomplete() {
			incomplete++
		}
		score := 1 - float64(r.Currency())/float64(a.volatility)
		if score > 0 {
			timelinessSum += score
		}
		if !r.IsNull(model.FieldValue) {
			a.values = append(a.values, r.Value)
		}
	}
	m.Completeness = 1 - float64(incomplete)/float64(n)
	m.Timeliness = timelinessSum / float64(n)

	// Accuracy: median/MAD thresholding over the non-null values, with the
	// full window size in the denominator. An all-null window has an
	// undefined median; no row can pass the threshold, so accuracy is 0.
	if len(a.values) == 0 {
		m.Incorrect = int64(n)
		return m
	}

	m.Median = Median(a.values)
	a.devs = AbsoluteDeviations(a.devs, a.values, m.Median)

	// Median sorts its input; deviations must be computed before MAD
	// reorders them, so work on a copy for the MAD itself.
	madScratch := append([]float64(nil), a.devs...)
	m.MAD = Median(madScratch)
	m.Threshold = 3 * m.MAD * MADScale

	var within int
	for _, d := range a.devs {
		if d <= m.Threshold {
			within++
		}
	}
	m.Accuracy = float64(within) / float64(n)
	m.Incorrect = int64(n - within)
	return m
}
