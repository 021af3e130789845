package model

// WindowKey identifies a tumbling window by its boundary readings.
// The DSMS emits the first and last value_id of each window; Ordinal is the
// zero-based window position for sources that emit no keys.
type WindowKey struct {
	Ordinal      int64
	FirstValueID int64
	LastValueID  int64
}

// WindowMetrics is the per-window output of the metric calculator and the
// unit of comparison against the DSMS result stream.
type WindowMetrics struct {
	Key WindowKey

	Accuracy     float64
	Completeness float64
	Timeliness   float64

	// Diagnostic values behind Accuracy, kept for inspection output.
	Median    float64
	MAD       float64
	Threshold float64
	Incorrect int64
}

// DefectKind labels an injected defect family.
type DefectKind uint8

const (
	DefectOutlier DefectKind = iota
	DefectMissing
	DefectDelay
)

// String returns the defect family name.
func (k DefectKind) String() string {
	switch k {
	case DefectOutlier:
		return "outlier"
	case DefectMissing:
		return "missing"
	case DefectDelay:
		return "delay"
	default:
		return "unknown"
	}
}

// DefectMark records one injected defect for ground-truth validation of the
// injector itself. It is not needed for verification against the DSMS.
type DefectMark struct {
	Index int64
	Kind  DefectKind

	// Offset is the value perturbation for outliers, or the added
	// availability delay in milliseconds for delays. Zero for missing.
	Offset float64
}
