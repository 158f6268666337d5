package web

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"NiftyRSI/internal/model"
)

const dateLayout = "2006-01-02"

var errNoSelection = errors.New("select at least one index")

// calcParams is the query string of a calculation request. Absent fields
// fall back to the server defaults.
type calcParams struct {
	Indices []string `form:"index"`
	Start   string   `form:"start"`
	End     string   `form:"end"`
	Window  string   `form:"window"`
}

// buildRequest validates params and resolves them into a calculation request.
// It returns errNoSelection when no index was chosen.
func (s *Server) buildRequest(p calcParams) (model.CalcRequest, error) {
	var req model.CalcRequest

	start, err := parseDate(p.Start, s.Opts.DefaultStart)
	if err != nil {
		return req, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(p.End, s.Opts.DefaultEnd)
	if err != nil {
		return req, fmt.Errorf("invalid end date: %w", err)
	}
	if !start.Before(end) {
		return req, fmt.Errorf("start date %s must be before end date %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}

	window := s.Opts.DefaultWindow
	if w := strings.TrimSpace(p.Window); w != "" {
		window, err = strconv.Atoi(w)
		if err != nil || window < 1 {
			return req, fmt.Errorf("window must be a positive integer, got %q", w)
		}
	}

	var names []string
	for _, n := range p.Indices {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return req, errNoSelection
	}
	indices, err := s.Collector.Resolve(names)
	if err != nil {
		return req, err
	}

	req.Indices = indices
	req.Start = start
	req.End = end
	req.Window = window
	return req, nil
}

func parseDate(v string, def time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return time.Parse(dateLayout, v)
}
