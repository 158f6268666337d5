package calculator

import (
	"errors"
	"math"

	"NiftyRSI/internal/model"
)

// DefaultWindow is the conventional RSI lookback in trading days.
const DefaultWindow = 14

var (
	ErrInvalidWindow = errors.New("window must be positive")
	ErrEmptySeries   = errors.New("price series is empty")
)

// RSI returns one RSI value per close using simple (not Wilder) averages of
// gains and losses. The averaging window shrinks at the start of the series
// instead of producing undefined values. A flat window (no gains, no losses)
// yields NaN; a window with gains and no losses yields 100.
func RSI(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if len(closes) == 0 {
		return nil, ErrEmptySeries
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		// An undefined change (NaN neighbour) counts as neither gain nor loss.
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGain, err := RollingMean(gains, window, 1)
	if err != nil {
		return nil, err
	}
	avgLoss, err := RollingMean(losses, window, 1)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(closes))
	for i := range out {
		out[i] = relativeStrengthIndex(avgGain[i], avgLoss[i])
	}
	return out, nil
}

func relativeStrengthIndex(avgGain, avgLoss float64) float64 {
	switch {
	case math.IsNaN(avgGain) || math.IsNaN(avgLoss):
		return math.NaN()
	case avgLoss == 0 && avgGain == 0:
		return math.NaN()
	case avgLoss == 0:
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// CalculateRSISeries derives an RSISeries aligned with the bars of series.
func CalculateRSISeries(series *model.PriceSeries, window int) (*model.RSISeries, error) {
	if series == nil {
		return nil, ErrEmptySeries
	}
	values, err := RSI(series.Closes(), window)
	if err != nil {
		return nil, err
	}
	points := make([]model.RSIPoint, len(values))
	for i, v := range values {
		points[i] = model.RSIPoint{Time: series.Bars[i].Time, Value: v}
	}
	return &model.RSISeries{Window: window, Points: points}, nil
}
