package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"NiftyRSI/internal/model"
)

// MockFetcher returns deterministic synthetic data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV // fixed bars per symbol
	Errs  map[string]error         // forced failures per symbol

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("mock: %w", ErrNoData)
		}
		return bars, nil
	}
	bars := generateMockBars(symbol, m.basePrice(), start, end)
	if len(bars) == 0 {
		return nil, fmt.Errorf("mock: %w", ErrNoData)
	}
	return bars, nil
}

// Calls returns the symbols requested so far, in call order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) basePrice() float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 20000
}

// generateMockBars emits one bar per weekday in [start, end). The phase is
// derived from the symbol so different indices get different curves.
func generateMockBars(symbol string, basePrice float64, start, end time.Time) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	phase := float64(h.Sum32()%360) * math.Pi / 180

	var bars []model.OHLCV
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		x := float64(i)
		p := basePrice * (1 + 0.08*math.Sin(x/15+phase) + 0.0004*x)
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     p * 0.998,
			High:     p * 1.006,
			Low:      p * 0.993,
			Close:    p,
			AdjClose: p,
			Volume:   250000 + float64(i%7)*10000,
		})
		i++
	}
	return bars
}
