package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/model"
	"NiftyRSI/internal/recorder"
	"NiftyRSI/internal/zone"

	"github.com/gin-gonic/gin"
)

type countingRecorder struct {
	sources []recorder.Source
}

func (r *countingRecorder) RecordRun(evt *recorder.RunEvent) error {
	r.sources = append(r.sources, evt.Source)
	return nil
}

func (r *countingRecorder) Close() error { return nil }

func newTestServer(t *testing.T, fetcher collector.Fetcher, rec recorder.Recorder, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.DefaultStart.IsZero() {
		opts.DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.DefaultEnd.IsZero() {
		opts.DefaultEnd = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.DefaultWindow == 0 {
		opts.DefaultWindow = 14
	}

	col := collector.NewCollector(fetcher, model.DefaultIndices, 1, zone.Classify)
	s, err := NewServer(col, rec, opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.ServeHTTP(w, req)
	return w
}

func calcURL(path string, indices []string, start, end, window string) string {
	q := url.Values{}
	for _, i := range indices {
		q.Add("index", i)
	}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if window != "" {
		q.Set("window", window)
	}
	return path + "?" + q.Encode()
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{}, nil, Options{})
	w := get(s, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"Calculate RSI",
		"Use the sidebar to select indices and set date ranges, then click &#39;Calculate RSI&#39;.",
		`value="2024-01-01"`,
		`value="2024-04-01"`,
		"Nifty Bank",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
	if n := strings.Count(body, " selected>"); n != len(model.DefaultIndices) {
		t.Errorf("expected all %d indices selected, got %d", len(model.DefaultIndices), n)
	}
}

func TestCalculatePage(t *testing.T) {
	rec := &countingRecorder{}
	fetcher := &collector.MockFetcher{Errs: map[string]error{"^CNXIT": errors.New("connection refused")}}
	s := newTestServer(t, fetcher, rec, Options{})

	w := get(s, calcURL("/calculate", []string{"Nifty 50", "Nifty IT", "Nifty Bank"}, "2024-01-01", "2024-03-01", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()

	for _, want := range []string{
		"Fetching data and calculating RSI...",
		"Error fetching data for Nifty IT: connection refused",
		"View Data for Nifty 50",
		"View Data for Nifty Bank",
		"<th>Adj Close</th>",
		"RSI Calculation Completed!",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("results page missing %q", want)
		}
	}
	if strings.Contains(body, "View Data for Nifty IT") {
		t.Error("failed index should not get a data table")
	}
	// Charts and banners keep selection order.
	i50 := strings.Index(body, `id="rsi-chart-0"`)
	iIT := strings.Index(body, "Error fetching data for Nifty IT")
	iBank := strings.Index(body, `id="rsi-chart-2"`)
	if i50 < 0 || iIT < 0 || iBank < 0 || !(i50 < iIT && iIT < iBank) {
		t.Errorf("unexpected order: %d %d %d", i50, iIT, iBank)
	}
	// First RSI point is undefined and must be plotted as a gap.
	if !strings.Contains(body, "[null,") {
		t.Error("expected a null gap at the start of the chart data")
	}
	if len(rec.sources) != 1 || rec.sources[0] != recorder.SourceDashboard {
		t.Errorf("expected one dashboard run recorded, got %v", rec.sources)
	}
}

func TestCalculateValidation(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{}, nil, Options{})

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"unknown index", calcURL("/calculate", []string{"Nifty Moon"}, "", "", ""), "unknown index"},
		{"bad start", calcURL("/calculate", []string{"Nifty 50"}, "01/02/2024", "", ""), "invalid start date"},
		{"bad end", calcURL("/calculate", []string{"Nifty 50"}, "", "tomorrow", ""), "invalid end date"},
		{"start equals end", calcURL("/calculate", []string{"Nifty 50"}, "2024-02-01", "2024-02-01", ""), "must be before"},
		{"start after end", calcURL("/calculate", []string{"Nifty 50"}, "2024-03-01", "2024-02-01", ""), "must be before"},
		{"zero window", calcURL("/calculate", []string{"Nifty 50"}, "", "", "0"), "window must be a positive integer"},
		{"text window", calcURL("/calculate", []string{"Nifty 50"}, "", "", "abc"), "window must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(s, tt.target)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestCalculateEmptySelection(t *testing.T) {
	fetcher := &collector.MockFetcher{}
	s := newTestServer(t, fetcher, nil, Options{})

	w := get(s, "/calculate?start=2024-01-01&end=2024-02-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please select at least one index.") {
		t.Error("expected selection warning")
	}
	if calls := fetcher.Calls(); len(calls) != 0 {
		t.Errorf("nothing should be fetched, got %v", calls)
	}
}

func TestAPIIndices(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{}, nil, Options{})
	w := get(s, "/api/v1/indices")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []model.Index
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(model.DefaultIndices) || got[0].Symbol != "^NSEI" {
		t.Errorf("unexpected indices %+v", got)
	}
}

func TestAPIRSI(t *testing.T) {
	rec := &countingRecorder{}
	fetcher := &collector.MockFetcher{Errs: map[string]error{"^CNXMETAL": errors.New("boom")}}
	s := newTestServer(t, fetcher, rec, Options{})

	w := get(s, calcURL("/api/v1/rsi", []string{"Nifty Pharma", "Nifty Metal"}, "2024-01-01", "2024-02-01", "5"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp apiRunResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Window != 5 || resp.Failed != 1 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response header: %+v", resp)
	}

	pharma := resp.Results[0]
	if pharma.Index != "Nifty Pharma" || pharma.Error != "" || pharma.Summary == nil {
		t.Fatalf("unexpected pharma result: %+v", pharma)
	}
	if len(pharma.Points) != pharma.Summary.Rows {
		t.Errorf("points %d != rows %d", len(pharma.Points), pharma.Summary.Rows)
	}
	if pharma.Points[0].RSI != nil {
		t.Errorf("first RSI should be null, got %v", *pharma.Points[0].RSI)
	}
	for _, p := range pharma.Points[1:] {
		if p.RSI != nil && (*p.RSI < 0 || *p.RSI > 100) {
			t.Errorf("RSI out of range on %s: %v", p.Date, *p.RSI)
		}
	}
	if last := pharma.Points[len(pharma.Points)-1].Date; last >= "2024-02-01" {
		t.Errorf("end date should be exclusive, last point %s", last)
	}

	if metal := resp.Results[1]; metal.Error == "" || metal.Points != nil {
		t.Errorf("expected metal to fail without points: %+v", metal)
	}
	if len(rec.sources) != 1 || rec.sources[0] != recorder.SourceAPI {
		t.Errorf("expected one API run recorded, got %v", rec.sources)
	}
}

func TestAPIRSI_Validation(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{}, nil, Options{})

	for _, target := range []string{
		"/api/v1/rsi",
		calcURL("/api/v1/rsi", []string{"Nifty 50"}, "2024-13-01", "", ""),
		calcURL("/api/v1/rsi", []string{"Nifty 50"}, "", "", "-3"),
	} {
		w := get(s, target)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s: expected JSON error, got %s", target, w.Body.String())
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{}, nil, Options{})
	w := get(s, "/health")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}
