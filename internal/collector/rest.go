package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NiftyRSI/internal/model"
)

// RESTFetcher implements Fetcher against a generic bar REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
	Volume    float64  `json:"volume"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.Format(time.DateOnly))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var rb []restBar
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(rb))
	for _, b := range rb {
		t := time.Unix(b.Timestamp, 0).UTC()
		if t.Before(start) || !t.Before(end) {
			continue
		}
		adj := b.Close
		if b.AdjClose != nil {
			adj = *b.AdjClose
		}
		bars = append(bars, model.OHLCV{
			Time:     t,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: adj,
			Volume:   b.Volume,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch bars: %w", ErrNoData)
	}
	return normalizeBars(bars), nil
}
