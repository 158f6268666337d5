package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/model"
	"NiftyRSI/internal/notifier"
	"NiftyRSI/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// WatchConfig controls what the watch task evaluates.
type WatchConfig struct {
	Indices  []model.Index
	Lookback time.Duration
	Window   int
}

// Scheduler manages the cron watch task.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier // nil disables alerts
	Recorder  recorder.Recorder
	Watch     WatchConfig
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, watch WatchConfig) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Watch:     watch,
		Ctx:       ctx,
	}
}

// RegisterWatch registers the watch task on the given cron expression
// (six fields, seconds first).
func (s *Scheduler) RegisterWatch(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, func() { s.watchTask() }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunWatchNow executes the watch task immediately and returns its report.
func (s *Scheduler) RunWatchNow() *model.RunReport {
	return s.watchTask()
}

func (s *Scheduler) watchTask() *model.RunReport {
	log.Printf("[INFO] running watch task for %d indices", len(s.Watch.Indices))
	rep := s.evaluate(s.Ctx)

	for _, res := range rep.Results {
		if res.OK() {
			log.Printf("[INFO] watch %s: RSI %.2f (%s)", res.Index.Name, res.Summary.LastRSI, res.Summary.Zone)
		}
	}

	if err := s.Recorder.RecordRun(&recorder.RunEvent{Source: recorder.SourceWatch, Report: rep}); err != nil {
		log.Printf("[ERROR] record watch run: %v", err)
	}
	s.trySend(notifier.FormatWatchReport(rep))
	return rep
}

func (s *Scheduler) evaluate(ctx context.Context) *model.RunReport {
	return s.Collector.Latest(ctx, s.Watch.Indices, s.Watch.Lookback, s.Watch.Window)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch commandName(command) {
	case "/rsi":
		rep := s.evaluate(ctx)
		if err := s.Recorder.RecordRun(&recorder.RunEvent{Source: recorder.SourceWatch, Report: rep}); err != nil {
			log.Printf("[ERROR] record command run: %v", err)
		}
		return notifier.FormatWatchReport(rep)
	case "/indices":
		return notifier.FormatIndices(s.Collector.Indices)
	default:
		return notifier.FormatHelp()
	}
}

// commandName returns the lower-cased command word. Group chats append the
// bot name, e.g. /rsi@NiftyRSIBot.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
