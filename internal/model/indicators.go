package model

import (
	"math"
	"time"
)

// RSIPoint is one RSI observation. Value is NaN when undefined.
type RSIPoint struct {
	Time  time.Time
	Value float64
}

// Defined reports whether the point carries a plottable value.
func (p RSIPoint) Defined() bool { return !math.IsNaN(p.Value) }

// RSISeries is aligned one-to-one with the PriceSeries it was derived from.
type RSISeries struct {
	Window int
	Points []RSIPoint
}

// Last returns the most recent point, or false if the series is empty.
func (s *RSISeries) Last() (RSIPoint, bool) {
	if s == nil || len(s.Points) == 0 {
		return RSIPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Zone is the momentum band an RSI value falls into.
type Zone string

const (
	ZoneOversold   Zone = "OVERSOLD"
	ZoneNeutral    Zone = "NEUTRAL"
	ZoneOverbought Zone = "OVERBOUGHT"
	ZoneGap        Zone = "GAP"
)

// Summary holds headline figures for one computed index.
type Summary struct {
	Rows       int
	FirstDate  time.Time
	LastDate   time.Time
	LastClose  float64
	LastRSI    float64
	Zone       Zone
	PeriodHigh float64
	PeriodLow  float64
}
