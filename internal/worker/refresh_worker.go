// Package worker serves dashboard refresh requests received over AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

// Runner computes a dashboard report.
type Runner interface {
	Run(ctx context.Context, req services.Request) (*services.Report, error)
}

// ReportPublisher delivers report messages.
type ReportPublisher interface {
	PublishReport(ctx context.Context, routingKey string, msg *amqp.ReportMessage) error
}

// RefreshWorker runs the dashboard pipeline for each refresh request and
// publishes the outcome under a fixed routing key.
type RefreshWorker struct {
	runner     Runner
	publisher  ReportPublisher
	routingKey string
	logger     *applog.Logger
}

func NewRefreshWorker(runner Runner, publisher ReportPublisher, routingKey string, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &RefreshWorker{
		runner:     runner,
		publisher:  publisher,
		routingKey: routingKey,
		logger:     logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRefreshMessage processes a single refresh request. Requests that can
// never succeed are answered with an error report and acknowledged; source
// failures are returned so the message is retried.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshRequest) error {
	logger := w.logger.With(applog.FieldRequestID, msg.RequestID)
	logger.InfoContext(ctx, "Processing refresh request",
		"start", msg.Start,
		"end", msg.End,
		"categories", len(msg.Categories))

	start, end, err := msg.Dates()
	if err != nil {
		return w.reject(ctx, logger, msg, err)
	}

	report, err := w.runner.Run(ctx, services.Request{
		Start:      start,
		End:        end,
		Categories: msg.Categories,
		Horizon:    msg.Horizon,
		TopN:       msg.TopN,
	})
	switch {
	case err == nil:
	case errors.Is(err, core.ErrInvalidRange), errors.Is(err, core.ErrInvalidHorizon):
		return w.reject(ctx, logger, msg, err)
	default:
		return fmt.Errorf("run dashboard: %w", err)
	}

	if err := w.publisher.PublishReport(ctx, w.routingKey, amqp.NewReportMessage(msg.RequestID, report)); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	logger.InfoContext(ctx, "Refresh request served",
		applog.FieldRunID, report.RunID,
		applog.FieldKept, report.Selected)
	return nil
}

func (w *RefreshWorker) reject(ctx context.Context, logger *applog.Logger, msg *amqp.RefreshRequest, cause error) error {
	logger.WarnContext(ctx, "Rejecting refresh request", applog.FieldError, cause)
	if err := w.publisher.PublishReport(ctx, w.routingKey, amqp.NewErrorMessage(msg.RequestID, cause)); err != nil {
		return fmt.Errorf("publish error report: %w", err)
	}
	return nil
}
