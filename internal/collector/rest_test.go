package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRESTFetcher_FetchDailyBars(t *testing.T) {
	var auth, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"timestamp":1704326400,"open":2,"high":3,"low":1,"close":2.5,"volume":10},
			{"timestamp":1704240000,"open":1,"high":2,"low":1,"close":1.5,"adj_close":1.4,"volume":11},
			{"timestamp":1704758400,"open":1,"high":2,"low":1,"close":9,"volume":11}
		]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchDailyBars(context.Background(), "^NSEI", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if query != "end=2024-01-05&start=2024-01-01&symbol=%5ENSEI" {
		t.Errorf("unexpected query %q", query)
	}
	// The bar dated 2024-01-09 falls outside [start, end).
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 1.5 || bars[0].AdjClose != 1.4 {
		t.Errorf("unexpected first bar %+v", bars[0])
	}
	if bars[1].AdjClose != 2.5 {
		t.Errorf("adj close should default to close, got %f", bars[1].AdjClose)
	}
}

func TestRESTFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "")
	if _, err := f.FetchDailyBars(context.Background(), "X", time.Now().AddDate(0, 0, -3), time.Now()); err == nil {
		t.Fatal("expected error for 401")
	}
}
