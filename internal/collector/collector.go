package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"NiftyRSI/internal/calculator"
	"NiftyRSI/internal/model"

	"golang.org/x/sync/errgroup"
)

// Collector runs fetch and RSI computation for a set of indices.
type Collector struct {
	Fetcher     Fetcher
	Indices     []model.Index
	Concurrency int
	Classify    func(float64) model.Zone
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, indices []model.Index, concurrency int, classify func(float64) model.Zone) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		Fetcher:     fetcher,
		Indices:     indices,
		Concurrency: concurrency,
		Classify:    classify,
	}
}

// Lookup resolves an index by display name.
func (c *Collector) Lookup(name string) (model.Index, bool) {
	for _, idx := range c.Indices {
		if idx.Name == name {
			return idx, true
		}
	}
	return model.Index{}, false
}

// Resolve maps display names to indices, failing on the first unknown name.
func (c *Collector) Resolve(names []string) ([]model.Index, error) {
	out := make([]model.Index, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		idx, ok := c.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown index %q", n)
		}
		seen[n] = true
		out = append(out, idx)
	}
	return out, nil
}

// Run processes every requested index. A failure for one index is recorded
// in its result and never stops the others. Results keep request order.
func (c *Collector) Run(ctx context.Context, req model.CalcRequest) *model.RunReport {
	report := &model.RunReport{
		Request:   req,
		Results:   make([]*model.IndexResult, len(req.Indices)),
		StartedAt: time.Now(),
	}

	var g errgroup.Group
	g.SetLimit(c.limit())
	for i, idx := range req.Indices {
		g.Go(func() error {
			report.Results[i] = c.process(ctx, idx, req)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now()
	log.Printf("[INFO] run finished: %d indices, %d failed, took %v",
		len(report.Results), len(report.Failed()), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}

// Latest evaluates indices over the trailing lookback ending now.
func (c *Collector) Latest(ctx context.Context, indices []model.Index, lookback time.Duration, window int) *model.RunReport {
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return c.Run(ctx, model.CalcRequest{
		Indices: indices,
		Start:   end.Add(-lookback),
		End:     end,
		Window:  window,
	})
}

func (c *Collector) limit() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

func (c *Collector) process(ctx context.Context, idx model.Index, req model.CalcRequest) *model.IndexResult {
	res := &model.IndexResult{Index: idx}

	bars, err := c.Fetcher.FetchDailyBars(ctx, idx.Symbol, req.Start, req.End)
	if err == nil && len(bars) == 0 {
		err = ErrNoData
	}
	if err != nil {
		log.Printf("[WARN] fetch %s (%s) from %s failed: %v", idx.Name, idx.Symbol, c.Fetcher.Name(), err)
		res.Err = &FetchError{Index: idx.Name, Symbol: idx.Symbol, Err: err}
		return res
	}

	series := &model.PriceSeries{Symbol: idx.Symbol, Bars: bars, FetchedAt: time.Now()}
	window := req.Window
	if window <= 0 {
		window = calculator.DefaultWindow
	}
	rsi, err := calculator.CalculateRSISeries(series, window)
	if err != nil {
		res.Err = fmt.Errorf("calculate rsi for %s: %w", idx.Name, err)
		return res
	}

	res.Prices = series
	res.RSI = rsi
	res.Summary = calculator.Summarize(series, rsi, c.Classify)
	log.Printf("[INFO] %s (%s): %d bars, last RSI %.2f", idx.Name, idx.Symbol, series.Len(), res.Summary.LastRSI)
	return res
}
