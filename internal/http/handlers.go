package http

import (
	"context"
	"net/http"
	"time"

	"finboard/internal/filter"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/report"
	"finboard/internal/services"
)

type dashboardResponse struct {
	*services.Report
	CategoryLabels map[string]string `json:"category_labels"`
}

type optionsResponse struct {
	filter.Options
	CategoryLabels map[string]string `json:"category_labels"`
}

type metricsResponse struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
}

// handleDashboard runs the full pipeline for the query's criteria.
// format=text returns the plain-text rendering instead of JSON.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseDashboardRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	rep, err := s.dashboard.Run(ctx, req)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.WriteText(w, rep); err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Text rendering failed", applog.FieldError, err)
		}
		return
	}

	NewJSONResponse().
		Header("X-Run-ID", rep.RunID).
		Data(dashboardResponse{Report: rep, CategoryLabels: report.CategoryLabels(rep.Options.Categories)}).
		Write(w)
}

// handleOptions returns the observed date bounds and categories.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	opts, err := s.dashboard.Options(ctx)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	if opts.Categories == nil {
		opts.Categories = []string{}
	}
	NewJSONResponse().
		Data(optionsResponse{Options: opts, CategoryLabels: report.CategoryLabels(opts.Categories)}).
		Write(w)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(metricsResponse{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the transaction source answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.dashboard.Options(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("source unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
