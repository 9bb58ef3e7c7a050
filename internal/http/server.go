// Package http serves the dashboard as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"finboard/internal/filter"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
)

// Dashboard is the pipeline the server exposes.
type Dashboard interface {
	Run(ctx context.Context, req services.Request) (*services.Report, error)
	Options(ctx context.Context) (filter.Options, error)
}

// Config holds server settings.
type Config struct {
	Addr               string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	RequestsPerMinute  int
}

type Server struct {
	http.Server
	dashboard Dashboard
	timeout   time.Duration
	logger    *applog.Logger

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, dashboard Dashboard, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		dashboard: dashboard,
		timeout:   cfg.RequestTimeout,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		tracer:    trace.NewMiddleware(logger),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		detector:  security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(mux)
	api = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(api)
	api = s.withDetection(api)
	api = s.tracer.Middleware(api)
	api = newCORS(cfg.CORSAllowedOrigins).Handler(api)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	})
}

// withDetection logs requests that look like scanner probes.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r))
	writeError(w, r, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded, retry later")
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
