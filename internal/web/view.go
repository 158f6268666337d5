package web

import (
	"errors"
	"fmt"
	"math"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/model"

	"github.com/shopspring/decimal"
)

// Dashboard text shown around a calculation.
const (
	hintText      = "Use the sidebar to select indices and set date ranges, then click 'Calculate RSI'."
	progressText  = "Fetching data and calculating RSI..."
	completedText = "RSI Calculation Completed!"
)

type indexOption struct {
	Name     string
	Symbol   string
	Selected bool
}

type formView struct {
	Options []indexOption
	Start   string
	End     string
	Window  int
}

type chartView struct {
	ID     string
	Title  string
	Labels []string
	Values []*float64 // nil marks a gap
}

type summaryView struct {
	LastDate   string
	LastClose  string
	LastRSI    string
	Zone       model.Zone
	PeriodHigh string
	PeriodLow  string
	Rows       int
}

type tableRow struct {
	Date     string
	Open     string
	High     string
	Low      string
	Close    string
	AdjClose string
	Volume   string
	RSI      string
}

type resultView struct {
	Name    string
	Symbol  string
	Error   string
	Chart   *chartView
	Summary *summaryView
	Rows    []tableRow
}

type pageData struct {
	Title     string
	Form      formView
	Hint      string
	Warning   string
	Error     string
	Progress  string
	Results   []resultView
	Completed string
}

func (s *Server) newForm(selected []string, start, end string, window int) formView {
	want := make(map[string]bool, len(selected))
	for _, n := range selected {
		want[n] = true
	}
	opts := make([]indexOption, 0, len(s.Collector.Indices))
	for _, idx := range s.Collector.Indices {
		opts = append(opts, indexOption{
			Name:     idx.Name,
			Symbol:   idx.Symbol,
			Selected: len(selected) == 0 || want[idx.Name],
		})
	}
	return formView{Options: opts, Start: start, End: end, Window: window}
}

// defaultForm has every index selected and the configured defaults filled in.
func (s *Server) defaultForm() formView {
	return s.newForm(nil,
		s.Opts.DefaultStart.Format(dateLayout),
		s.Opts.DefaultEnd.Format(dateLayout),
		s.Opts.DefaultWindow)
}

func buildResultViews(rep *model.RunReport) []resultView {
	views := make([]resultView, 0, len(rep.Results))
	for i, res := range rep.Results {
		v := resultView{Name: res.Index.Name, Symbol: res.Index.Symbol}
		if !res.OK() {
			v.Error = bannerCause(res.Err)
			views = append(views, v)
			continue
		}
		v.Chart = buildChart(i, res)
		v.Summary = buildSummary(res.Summary)
		v.Rows = buildRows(res)
		views = append(views, v)
	}
	return views
}

// bannerCause strips the index prefix a FetchError carries, since the banner
// already names the index.
func bannerCause(err error) string {
	var fe *collector.FetchError
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}

func buildChart(i int, res *model.IndexResult) *chartView {
	c := &chartView{
		ID:     fmt.Sprintf("rsi-chart-%d", i),
		Title:  res.Index.Name + " RSI",
		Labels: make([]string, len(res.RSI.Points)),
		Values: make([]*float64, len(res.RSI.Points)),
	}
	for j, p := range res.RSI.Points {
		c.Labels[j] = p.Time.Format(dateLayout)
		c.Values[j] = finite(p.Value)
	}
	return c
}

func buildSummary(s *model.Summary) *summaryView {
	if s == nil {
		return nil
	}
	return &summaryView{
		LastDate:   s.LastDate.Format(dateLayout),
		LastClose:  fixed(s.LastClose, 2),
		LastRSI:    fixed(s.LastRSI, 2),
		Zone:       s.Zone,
		PeriodHigh: fixed(s.PeriodHigh, 2),
		PeriodLow:  fixed(s.PeriodLow, 2),
		Rows:       s.Rows,
	}
}

func buildRows(res *model.IndexResult) []tableRow {
	rows := make([]tableRow, len(res.Prices.Bars))
	for i, b := range res.Prices.Bars {
		rsi := math.NaN()
		if i < len(res.RSI.Points) {
			rsi = res.RSI.Points[i].Value
		}
		rows[i] = tableRow{
			Date:     b.Time.Format(dateLayout),
			Open:     fixed(b.Open, 2),
			High:     fixed(b.High, 2),
			Low:      fixed(b.Low, 2),
			Close:    fixed(b.Close, 2),
			AdjClose: fixed(b.AdjClose, 2),
			Volume:   fixed(b.Volume, 0),
			RSI:      fixed(rsi, 2),
		}
	}
	return rows
}

// fixed renders v with the given decimal places, or "NaN" when v is not finite.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// finite returns nil for NaN and infinities so they encode as JSON null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
