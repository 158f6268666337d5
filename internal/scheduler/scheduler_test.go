package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/model"
	"NiftyRSI/internal/recorder"
	"NiftyRSI/internal/zone"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return f.err
}

type fakeRecorder struct {
	events []*recorder.RunEvent
}

func (f *fakeRecorder) RecordRun(evt *recorder.RunEvent) error {
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

func newTestScheduler(fetcher collector.Fetcher, n Notifier, rec recorder.Recorder) *Scheduler {
	col := collector.NewCollector(fetcher, model.DefaultIndices, 2, zone.Classify)
	return NewScheduler(context.Background(), col, n, rec, WatchConfig{
		Indices:  model.DefaultIndices[:2],
		Lookback: 60 * 24 * time.Hour,
		Window:   14,
	})
}

func TestRunWatchNow_RecordsAndNotifies(t *testing.T) {
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	s := newTestScheduler(&collector.MockFetcher{}, n, rec)

	rep := s.RunWatchNow()

	if len(rep.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rep.Results))
	}
	for _, res := range rep.Results {
		if !res.OK() {
			t.Errorf("%s failed: %v", res.Index.Name, res.Err)
		}
	}
	if len(rec.events) != 1 || rec.events[0].Source != recorder.SourceWatch {
		t.Errorf("expected one watch event, got %+v", rec.events)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "Nifty 50") {
		t.Errorf("expected one message naming Nifty 50, got %q", n.msgs)
	}
}

func TestRunWatchNow_FailureIsReported(t *testing.T) {
	n := &fakeNotifier{err: errors.New("telegram down")}
	fetcher := &collector.MockFetcher{Errs: map[string]error{"^CNXIT": errors.New("boom")}}
	s := newTestScheduler(fetcher, n, recorder.NewNoopRecorder())

	rep := s.RunWatchNow()

	if failed := rep.Failed(); len(failed) != 1 || failed[0].Index.Name != "Nifty IT" {
		t.Fatalf("expected Nifty IT to fail, got %+v", failed)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "boom") {
		t.Errorf("expected failure in message, got %q", n.msgs)
	}
}

func TestRunWatchNow_NilNotifier(t *testing.T) {
	s := newTestScheduler(&collector.MockFetcher{}, nil, nil)
	if rep := s.RunWatchNow(); len(rep.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rep.Results))
	}
}

func TestHandleCommand(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestScheduler(&collector.MockFetcher{}, nil, rec)
	ctx := context.Background()

	tests := []struct {
		cmd  string
		want string
	}{
		{"/rsi", "RSI(14)"},
		{"/RSI@NiftyRSIBot", "RSI(14)"},
		{"/indices", "^BANKNIFTY"},
		{"/help", "/indices"},
		{"", "/rsi"},
		{"hello", "/rsi"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(ctx, tt.cmd); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.cmd, got, tt.want)
		}
	}
	if len(rec.events) != 2 {
		t.Errorf("expected 2 recorded /rsi runs, got %d", len(rec.events))
	}
}

func TestRegisterWatch(t *testing.T) {
	s := newTestScheduler(&collector.MockFetcher{}, nil, nil)
	if err := s.RegisterWatch("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := s.RegisterWatch("not a cron"); err == nil {
		t.Error("expected error for invalid expression")
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}
