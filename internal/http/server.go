package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"headcount/internal/core"
	"headcount/internal/export"
	applog "headcount/internal/log"
	"headcount/internal/middleware/ratelimit"
	"headcount/internal/middleware/security"
	"headcount/internal/middleware/trace"
	"headcount/internal/ports"
	"headcount/internal/services"
	appweb "headcount/web"
)

// Pinger is the readiness probe of the record store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server's collaborators. Service, Reports and Exporter are required.
type Options struct {
	Addr     string
	Service  *services.AllocationService
	Reports  *services.ReportEngine
	Exporter *export.Exporter
	Store    Pinger
	Logger   *applog.Logger
	Clock    ports.Clock

	// Registry receives the server metrics; nil creates a private one.
	Registry   *prometheus.Registry
	CacheStats CacheStats

	RateLimit      ratelimit.Config
	TrustedProxies []string
}

// Server is the single-user web front end: one entry form and one current
// report per process. Handlers that touch either serialize on mu.
type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger
	clock     ports.Clock
	started   time.Time

	svc      *services.AllocationService
	reports  *services.ReportEngine
	exporter *export.Exporter
	store    Pinger

	registry *prometheus.Registry
	metrics  *Metrics
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	mu     sync.Mutex
	form   *services.FormController
	params ReportParams
	rows   []core.RenderedRow
	report core.Report
}

// NewServer loads templates and department lists and builds the handler chain.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	if opts.Service == nil || opts.Reports == nil || opts.Exporter == nil {
		return nil, fmt.Errorf("new server: service, reports and exporter are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(ctx).WithComponent(applog.ComponentHTTP)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.RateLimit.RequestsPerWindow == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	tmpl, err := template.New("").ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	form, err := services.NewFormController(ctx, opts.Service, opts.Clock)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}

	s := &Server{
		templates: tmpl,
		logger:    opts.Logger,
		clock:     opts.Clock,
		started:   opts.Clock(),
		svc:       opts.Service,
		reports:   opts.Reports,
		exporter:  opts.Exporter,
		store:     opts.Store,
		registry:  opts.Registry,
		metrics:   NewMetrics(opts.Registry, opts.CacheStats),
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		form:      form,
		params:    ParseReportParams(nil, opts.Clock()),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.limiter.Stop()
			return nil, err
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.logger, s.metrics.ObserveRequest)

	structured := applog.NewStructuredLogger(s.logger.WithComponent(applog.ComponentForm))
	opts.Service.OnSaved(func(ctx context.Context, rec core.AllocationRecord, created bool) {
		s.reports.Invalidate()
		s.metrics.allocationSaved(created)
		structured.LogAllocationSaved(ctx, rec.ID, rec.Department, rec.CairoCount, rec.TenthCount, rec.Date.ISO(), created)
	})

	s.Addr = opts.Addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/allocations", s.handleSaveAllocation)
	mux.HandleFunc("/allocations/edit", s.handleEditAllocation)
	mux.HandleFunc("/allocations/reset", s.handleResetForm)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/report/export", s.handleExport)
	mux.HandleFunc("/departments", s.handleDepartments)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// render executes a named template into a buffer so a failure never
// leaves a half-written response.
func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
