package calculator

import (
	"errors"
	"math"

	"NiftyRSI/internal/model"
)

// CloseRange returns the highest and lowest close across bars, ignoring NaN closes.
func CloseRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if math.IsNaN(b.Close) {
			continue
		}
		if b.Close > high {
			high = b.Close
		}
		if b.Close < low {
			low = b.Close
		}
	}
	if math.IsInf(high, -1) {
		return 0, 0, errors.New("no valid closes")
	}
	return high, low, nil
}

// Summarize builds the headline figures for a computed index.
func Summarize(series *model.PriceSeries, rsi *model.RSISeries, classify func(float64) model.Zone) *model.Summary {
	s := &model.Summary{Rows: series.Len()}
	if series.Len() == 0 {
		return s
	}
	first, last := series.Bars[0], series.Bars[series.Len()-1]
	s.FirstDate = first.Time
	s.LastDate = last.Time
	s.LastClose = last.Close
	s.LastRSI = math.NaN()
	if p, ok := rsi.Last(); ok {
		s.LastRSI = p.Value
	}
	if classify != nil {
		s.Zone = classify(s.LastRSI)
	}
	if h, l, err := CloseRange(series.Bars); err == nil {
		s.PeriodHigh = h
		s.PeriodLow = l
	}
	return s
}
