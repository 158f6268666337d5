package calculator

import (
	"errors"
	"math"
)

// RollingMean computes a trailing simple moving average over at most window
// observations ending at each index. NaN observations are skipped; a point with
// fewer than minPeriods valid observations in its window is NaN.
func RollingMean(values []float64, window, minPeriods int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if minPeriods <= 0 || minPeriods > window {
		return nil, errors.New("min periods must be in [1, window]")
	}

	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			sum += values[j]
			count++
		}
		if count < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out, nil
}
