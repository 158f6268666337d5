package recorder

import "NiftyRSI/internal/model"

// Source identifies what triggered a run.
type Source string

const (
	SourceDashboard Source = "DASHBOARD"
	SourceAPI       Source = "API"
	SourceWatch     Source = "WATCH"
)

// RunEvent holds one completed calculation run.
type RunEvent struct {
	Source Source
	Report *model.RunReport
}

// Recorder journals calculation runs. Price data is never stored.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	Close() error
}
