package web

import (
	"net/http"

	"NiftyRSI/internal/model"
	"NiftyRSI/internal/recorder"

	"github.com/gin-gonic/gin"
)

type apiPoint struct {
	Date  string   `json:"date"`
	Close *float64 `json:"close"`
	RSI   *float64 `json:"rsi"`
}

type apiSummary struct {
	Rows       int        `json:"rows"`
	FirstDate  string     `json:"first_date"`
	LastDate   string     `json:"last_date"`
	LastClose  *float64   `json:"last_close"`
	LastRSI    *float64   `json:"last_rsi"`
	Zone       model.Zone `json:"zone"`
	PeriodHigh *float64   `json:"period_high"`
	PeriodLow  *float64   `json:"period_low"`
}

type apiResult struct {
	Index   string      `json:"index"`
	Symbol  string      `json:"symbol"`
	Error   string      `json:"error,omitempty"`
	Summary *apiSummary `json:"summary,omitempty"`
	Points  []apiPoint  `json:"points,omitempty"`
}

type apiRunResponse struct {
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Window  int         `json:"window"`
	Failed  int         `json:"failed"`
	Results []apiResult `json:"results"`
}

func (s *Server) apiIndices(c *gin.Context) {
	c.JSON(http.StatusOK, s.Collector.Indices)
}

func (s *Server) apiRSI(c *gin.Context) {
	var p calcParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := s.buildRequest(p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep := s.run(c, req, recorder.SourceAPI)
	c.JSON(http.StatusOK, toAPIResponse(rep))
}

func toAPIResponse(rep *model.RunReport) apiRunResponse {
	out := apiRunResponse{
		Start:   rep.Request.Start.Format(dateLayout),
		End:     rep.Request.End.Format(dateLayout),
		Window:  rep.Request.Window,
		Failed:  len(rep.Failed()),
		Results: make([]apiResult, 0, len(rep.Results)),
	}
	for _, res := range rep.Results {
		r := apiResult{Index: res.Index.Name, Symbol: res.Index.Symbol}
		if !res.OK() {
			r.Error = res.Err.Error()
			out.Results = append(out.Results, r)
			continue
		}
		sum := res.Summary
		r.Summary = &apiSummary{
			Rows:       sum.Rows,
			FirstDate:  sum.FirstDate.Format(dateLayout),
			LastDate:   sum.LastDate.Format(dateLayout),
			LastClose:  finite(sum.LastClose),
			LastRSI:    finite(sum.LastRSI),
			Zone:       sum.Zone,
			PeriodHigh: finite(sum.PeriodHigh),
			PeriodLow:  finite(sum.PeriodLow),
		}
		r.Points = make([]apiPoint, len(res.Prices.Bars))
		for i, b := range res.Prices.Bars {
			r.Points[i] = apiPoint{Date: b.Time.Format(dateLayout), Close: finite(b.Close)}
			if i < len(res.RSI.Points) {
				r.Points[i].RSI = finite(res.RSI.Points[i].Value)
			}
		}
		out.Results = append(out.Results, r)
	}
	return out
}
