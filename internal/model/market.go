package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceSeries holds the bars fetched for one symbol, oldest first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the closing prices in bar order.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int { return len(p.Bars) }
