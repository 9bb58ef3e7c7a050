// Package services orchestrates the dashboard pipeline and snapshot copies
// on top of the store adapters.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finboard/internal/aggregate"
	"finboard/internal/core"
	"finboard/internal/filter"
	"finboard/internal/forecast"
	applog "finboard/internal/log"
	"finboard/internal/normalize"
	"finboard/internal/source"
)

// ErrSource wraps failures of the store adapter fetch.
var ErrSource = errors.New("transaction source unavailable")

// Request narrows one dashboard run. Zero Start or End fall back to the
// observed bounds. A nil Categories slice selects every observed category;
// a non-nil empty slice selects none.
type Request struct {
	Start      time.Time
	End        time.Time
	Categories []string
	Horizon    int
	TopN       int
}

// Criteria echoes the criteria a report was computed with.
type Criteria struct {
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Categories []string `json:"categories"`
}

// Report is everything the presentation layer needs for one run.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Criteria    Criteria        `json:"criteria"`
	Options     filter.Options  `json:"options"`
	Stats       normalize.Stats `json:"stats"`
	Selected    int             `json:"selected"`

	aggregate.Result

	Forecast      *forecast.Result `json:"forecast,omitempty"`
	ForecastError string           `json:"forecast_error,omitempty"`
}

type DashboardConfig struct {
	Horizon    int
	TopN       int
	Normalizer normalize.Options
}

// DashboardService runs fetch, normalize, filter, aggregate and forecast.
// Every run refetches; nothing is kept between runs.
type DashboardService struct {
	fetcher    source.TransactionFetcher
	normalizer *normalize.Normalizer
	config     DashboardConfig
	logger     *applog.Logger

	now   func() time.Time
	newID func() string
}

func NewDashboardService(fetcher source.TransactionFetcher, config DashboardConfig, logger *applog.Logger) *DashboardService {
	if config.Horizon < 1 {
		config.Horizon = forecast.DefaultHorizon
	}
	if config.TopN < 1 {
		config.TopN = aggregate.DefaultTopN
	}
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DashboardService{
		fetcher:    fetcher,
		normalizer: normalize.New(config.Normalizer),
		config:     config,
		logger:     logger.WithComponent(applog.ComponentPipeline),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// load fetches and normalizes the current rows.
func (s *DashboardService) load(ctx context.Context) (normalize.Result, error) {
	records, err := s.fetcher.FetchTransactions(ctx)
	if err != nil {
		return normalize.Result{}, fmt.Errorf("%w: %w", ErrSource, err)
	}
	res := s.normalizer.Normalize(records)
	for _, issue := range res.Issues {
		s.logger.DebugContext(ctx, "Field degraded", applog.FieldError, issue.Error())
	}
	return res, nil
}

// Options returns the observed date bounds and categories.
func (s *DashboardService) Options(ctx context.Context) (filter.Options, error) {
	res, err := s.load(ctx)
	if err != nil {
		return filter.Options{}, err
	}
	return filter.Observe(res.Transactions), nil
}

// criteria resolves req against the observed options.
func (s *DashboardService) criteria(req Request, observed filter.Options) filter.Criteria {
	start, end := req.Start, req.End
	// An open bound takes the observed one, but never crosses the given bound.
	if start.IsZero() {
		start = observed.First
		if !end.IsZero() && end.Before(start) {
			start = end
		}
	}
	if end.IsZero() {
		end = observed.Last
		if start.After(end) {
			end = start
		}
	}
	categories := req.Categories
	if categories == nil {
		categories = observed.Categories
	}
	return filter.NewCriteria(start, end, categories...)
}

// Run computes a report. It fails with *core.InvalidRangeError for an
// inverted range and with ErrSource when the fetch fails. Too little data
// for a forecast is reported in ForecastError, not as an error.
func (s *DashboardService) Run(ctx context.Context, req Request) (*Report, error) {
	started := s.now()
	runID := s.newID()
	logger := s.logger.With(applog.FieldRunID, runID)

	horizon := req.Horizon
	if horizon == 0 {
		horizon = s.config.Horizon
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidHorizon, horizon)
	}
	topN := req.TopN
	if topN < 1 {
		topN = s.config.TopN
	}

	// Reject an explicit inverted range before touching the store.
	if !req.Start.IsZero() && !req.End.IsZero() {
		if err := (filter.Criteria{Start: req.Start, End: req.End}).Validate(); err != nil {
			return nil, err
		}
	}

	norm, err := s.load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Fetch failed", applog.FieldError, err)
		return nil, err
	}
	observed := filter.Observe(norm.Transactions)
	criteria := s.criteria(req, observed)

	var selected []core.Transaction
	if observed.HasData {
		selected, err = filter.Apply(norm.Transactions, criteria)
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		RunID:       runID,
		GeneratedAt: started.UTC(),
		Criteria:    criteriaView(criteria),
		Options:     observed,
		Stats:       norm.Stats,
		Selected:    len(selected),
		Result:      aggregate.Compute(selected, aggregate.Options{TopN: topN}),
	}

	fc, err := forecast.Forecast(report.MonthlyIncome, report.MonthlyExpense, horizon)
	switch {
	case err == nil:
		report.Forecast = &fc
	case errors.Is(err, core.ErrInsufficientData):
		report.ForecastError = err.Error()
	default:
		return nil, fmt.Errorf("forecast: %w", err)
	}

	logger.InfoContext(ctx, "Dashboard computed",
		applog.FieldRows, norm.Stats.Rows,
		applog.FieldKept, len(selected),
		applog.FieldMissingTS, norm.Stats.MissingTimestamp,
		applog.FieldMissingAmount, norm.Stats.MissingAmount,
		applog.FieldUnknownKind, norm.Stats.UnknownKind,
		applog.FieldDuration, s.now().Sub(started).Milliseconds())
	return report, nil
}

func criteriaView(c filter.Criteria) Criteria {
	v := Criteria{Categories: c.CategoryList()}
	if !c.Start.IsZero() {
		v.Start = c.Start.Format(time.DateOnly)
	}
	if !c.End.IsZero() {
		v.End = c.End.Format(time.DateOnly)
	}
	return v
}
