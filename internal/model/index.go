package model

import "time"

// Index maps a display name to its market-data ticker.
type Index struct {
	Name   string `yaml:"name" json:"name"`
	Symbol string `yaml:"symbol" json:"symbol"`
}

// DefaultIndices is the built-in Nifty index mapping, in display order.
var DefaultIndices = []Index{
	{Name: "Nifty 50", Symbol: "^NSEI"},
	{Name: "Nifty IT", Symbol: "^CNXIT"},
	{Name: "Nifty Pharma", Symbol: "^CNXPHARMA"},
	{Name: "Nifty Auto", Symbol: "^CNXAUTO"},
	{Name: "Nifty Metal", Symbol: "^CNXMETAL"},
	{Name: "Nifty Bank", Symbol: "^BANKNIFTY"},
}

// CalcRequest describes one user-triggered calculation.
// End is exclusive.
type CalcRequest struct {
	Indices []Index
	Start   time.Time
	End     time.Time
	Window  int
}

// IndexResult is the outcome for a single index. Err is set when fetching failed,
// in which case Prices, RSI and Summary are nil.
type IndexResult struct {
	Index   Index
	Prices  *PriceSeries
	RSI     *RSISeries
	Summary *Summary
	Err     error
}

// OK reports whether the index was fetched and computed.
func (r *IndexResult) OK() bool { return r.Err == nil }

// RunReport collects results in the order the indices were selected.
type RunReport struct {
	Request    CalcRequest
	Results    []*IndexResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the results whose fetch failed.
func (r *RunReport) Failed() []*IndexResult {
	var out []*IndexResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded returns the results that were computed.
func (r *RunReport) Succeeded() []*IndexResult {
	var out []*IndexResult
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res)
		}
	}
	return out
}
