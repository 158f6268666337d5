package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/recorder"
	"NiftyRSI/internal/zone"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options holds the request defaults and middleware limits.
type Options struct {
	DefaultStart   time.Time
	DefaultEnd     time.Time
	DefaultWindow  int
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

// Server wires the dashboard and JSON API around the collector.
type Server struct {
	Router    *gin.Engine
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Opts      Options
}

// NewServer builds the router, loads templates and registers routes.
func NewServer(col *collector.Collector, rec recorder.Recorder, opts Options) (*Server, error) {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware(opts.RateLimit, opts.RateBurst))
	r.Use(TimeoutMiddleware(opts.RequestTimeout))

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	s := &Server{
		Router:    r,
		Collector: col,
		Recorder:  rec,
		Opts:      opts,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Router.GET("/", s.index)
	s.Router.GET("/calculate", s.calculate)
	s.Router.GET("/health", s.health)

	api := s.Router.Group("/api/v1")
	api.GET("/indices", s.apiIndices)
	api.GET("/rsi", s.apiRSI)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"zoneLabel": zone.Label,
	}
}
