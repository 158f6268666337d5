package zone

import (
	"math"

	"NiftyRSI/internal/model"
)

// Thresholds bounds the neutral band. Values at or below Oversold, or at or
// above Overbought, fall outside it.
type Thresholds struct {
	Oversold   float64 `yaml:"oversold"`
	Overbought float64 `yaml:"overbought"`
}

// DefaultThresholds is the classic 30/70 band.
var DefaultThresholds = Thresholds{Oversold: 30, Overbought: 70}

// Classify maps an RSI value to its zone using the default band.
func Classify(rsi float64) model.Zone {
	return DefaultThresholds.Classify(rsi)
}

// Classify maps an RSI value to its zone. NaN maps to ZoneGap.
func (t Thresholds) Classify(rsi float64) model.Zone {
	switch {
	case math.IsNaN(rsi):
		return model.ZoneGap
	case rsi <= t.Oversold:
		return model.ZoneOversold
	case rsi >= t.Overbought:
		return model.ZoneOverbought
	default:
		return model.ZoneNeutral
	}
}

// Label returns a short human label for a zone.
func Label(z model.Zone) string {
	switch z {
	case model.ZoneOversold:
		return "Oversold"
	case model.ZoneOverbought:
		return "Overbought"
	case model.ZoneNeutral:
		return "Neutral"
	default:
		return "n/a"
	}
}
