package metric

import "sort"

// MADScale converts the median absolute deviation into a robust standard
// deviation estimate under Gaussian assumptions. The DSMS query text uses
// this constant, so the offline pipeline must too.
const MADScale = 1.4826

// Median returns the median of values, averaging the two middle elements for
// even counts (the convention of the DSMS MEDIAN aggregate). values is
// sorted in place; callers pass scratch slices. An empty input returns 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sort.Float64s(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// AbsoluteDeviations fills dst with |v - median| for every value.
func AbsoluteDeviations(dst, values []float64, median float64) []float64 {
	dst = dst[:0]
	for _, v := range values {
		d := v - median
		if d < 0 {
			d = -d
		}
		dst = append(dst, d)
	}
	return dst
}
