package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"NiftyRSI/internal/model"
	"NiftyRSI/internal/recorder"

	"github.com/gin-gonic/gin"
)

const pageTitle = "Nifty Indices RSI Calculator"

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{
		Title: pageTitle,
		Form:  s.defaultForm(),
		Hint:  hintText,
	})
}

func (s *Server) calculate(c *gin.Context) {
	var p calcParams
	if err := c.ShouldBindQuery(&p); err != nil {
		s.renderFormError(c, p, err)
		return
	}

	req, err := s.buildRequest(p)
	if errors.Is(err, errNoSelection) {
		form := s.formFromParams(p)
		for i := range form.Options {
			form.Options[i].Selected = false
		}
		c.HTML(http.StatusOK, "index.html", pageData{
			Title:   pageTitle,
			Form:    form,
			Warning: "Please select at least one index.",
		})
		return
	}
	if err != nil {
		s.renderFormError(c, p, err)
		return
	}

	rep := s.run(c, req, recorder.SourceDashboard)
	c.HTML(http.StatusOK, "results.html", pageData{
		Title:     pageTitle,
		Form:      s.formFor(req),
		Progress:  progressText,
		Results:   buildResultViews(rep),
		Completed: completedText,
	})
}

func (s *Server) renderFormError(c *gin.Context, p calcParams, err error) {
	form := s.formFromParams(p)
	c.HTML(http.StatusBadRequest, "index.html", pageData{
		Title: pageTitle,
		Form:  form,
		Error: err.Error(),
	})
}

// formFromParams echoes the submitted values back into the form, falling back
// to the defaults for anything missing.
func (s *Server) formFromParams(p calcParams) formView {
	form := s.newForm(p.Indices, s.Opts.DefaultStart.Format(dateLayout), s.Opts.DefaultEnd.Format(dateLayout), s.Opts.DefaultWindow)
	if p.Start != "" {
		form.Start = p.Start
	}
	if p.End != "" {
		form.End = p.End
	}
	if w, err := strconv.Atoi(p.Window); err == nil {
		form.Window = w
	}
	return form
}

func (s *Server) formFor(req model.CalcRequest) formView {
	names := make([]string, len(req.Indices))
	for i, idx := range req.Indices {
		names[i] = idx.Name
	}
	return s.newForm(names, req.Start.Format(dateLayout), req.End.Format(dateLayout), req.Window)
}

// run executes the calculation and journals it. Journal failures are logged only.
func (s *Server) run(c *gin.Context, req model.CalcRequest, src recorder.Source) *model.RunReport {
	rep := s.Collector.Run(c.Request.Context(), req)
	if err := s.Recorder.RecordRun(&recorder.RunEvent{Source: src, Report: rep}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	return rep
}
