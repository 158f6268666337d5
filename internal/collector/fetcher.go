package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"NiftyRSI/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
// End is exclusive.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// ErrNoData is returned when a provider answers successfully but without bars.
var ErrNoData = errors.New("no data returned")

// FetchError reports that price data for one index could not be retrieved.
type FetchError struct {
	Index  string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Index, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// newHTTPClient builds a client with the shared timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// normalizeBars sorts bars chronologically and keeps the last bar of each calendar day.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sortBars(bars)
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
