// Package curve implements the series transformations planners apply to a
// generated forecast: smoothing, trend fitting, flattening, and the
// rescaling that keeps volumes consistent afterwards.
package curve

import "math"

// Subrange is the closed index range from the first to the last non-zero
// entry of a series. Operations act only inside it; leading and trailing
// zeros are quiet hours and never move.
type Subrange struct {
	Start int
	End   int
}

// ExtractSubrange locates the active span of series. ok is false when the
// series is entirely zero, in which case operations are no-ops.
func ExtractSubrange(series []float64) (Subrange, bool) {
	start, end := -1, -1
	for i, v := range series {
		if v != 0 {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	if start == -1 {
		return Subrange{}, false
	}
	return Subrange{Start: start, End: end}, true
}

// Smooth replaces each non-zero entry of the active span with a moving
// average of its original neighbors: three-point centered in the interior,
// two-point at the span edges. Zero entries inside the span pass through
// unchanged. Results are clamped at zero.
func Smooth(series []float64) []float64 {
	out := copySeries(series)
	sub, ok := ExtractSubrange(series)
	if !ok || sub.Start == sub.End {
		return out
	}

	orig := series[sub.Start : sub.End+1]
	for i, v := range orig {
		if v == 0 {
			continue
		}
		var smoothed float64
		switch i {
		case 0:
			smoothed = (orig[0] + orig[1]) / 2
		case len(orig) - 1:
			smoothed = (orig[len(orig)-2] + orig[len(orig)-1]) / 2
		default:
			smoothed = (orig[i-1] + orig[i] + orig[i+1]) / 3
		}
		out[sub.Start+i] = math.Max(0, smoothed)
	}
	return out
}

// TrendFit replaces each non-zero entry of the active span with its value
// on the least-squares line fit over the span. Zero entries keep their
// zeros.
func TrendFit(series []float64) []float64 {
	out := copySeries(series)
	sub, ok := ExtractSubrange(series)
	if !ok {
		return out
	}

	var n, xSum, ySum, xySum, xSqSum float64
	for i := sub.Start; i <= sub.End; i++ {
		x := float64(i)
		y := series[i]
		n++
		xSum += x
		ySum += y
		xySum += x * y
		xSqSum += x * x
	}

	denom := n*xSqSum - xSum*xSum
	var slope, intercept float64
	if denom != 0 {
		slope = (n*xySum - xSum*ySum) / denom
		intercept = (ySum - slope*xSum) / n
	} else {
		// Single-point span: the fit is the point itself.
		intercept = ySum / n
	}

	for i := sub.Start; i <= sub.End; i++ {
		if series[i] == 0 {
			continue
		}
		out[i] = slope*float64(i) + intercept
	}
	return out
}

// Flatten sets every non-zero entry of the active span to the span's sum.
// The total therefore multiplies by the number of non-zero entries; pair
// with MaintainOriginalSum to level a curve without changing its volume.
func Flatten(series []float64) []float64 {
	out := copySeries(series)
	sub, ok := ExtractSubrange(series)
	if !ok {
		return out
	}

	var sum float64
	for i := sub.Start; i <= sub.End; i++ {
		sum += series[i]
	}
	for i := sub.Start; i <= sub.End; i++ {
		if series[i] != 0 {
			out[i] = sum
		}
	}
	return out
}

// MaintainOriginalSum rescales modified uniformly so it sums to
// originalSum. A zero modified sum is left untouched.
func MaintainOriginalSum(modified []float64, originalSum float64) []float64 {
	out := copySeries(modified)
	var modifiedSum float64
	for _, v := range modified {
		modifiedSum += v
	}
	if modifiedSum == 0 {
		return out
	}
	factor := originalSum / modifiedSum
	for i := range out {
		out[i] *= factor
	}
	return out
}

func copySeries(series []float64) []float64 {
	out := make([]float64, len(series))
	copy(out, series)
	return out
}
