package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
)

// Error codes returned in error bodies.
const (
	codeBadRequest        = "bad_request"
	codeInvalidRange      = "invalid_range"
	codeSourceUnavailable = "source_unavailable"
	codeTimeout           = "timeout"
	codeRateLimited       = "rate_limited"
	codeInternal          = "internal"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the response. Encoding happens before the status line so an
// encoding failure can still become a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body, err := json.Marshal(b.data)
	if err != nil {
		slog.Error("Response encoding failed", applog.FieldError, err)
		http.Error(w, `{"error":{"code":"internal","message":"encoding failed"}}`, http.StatusInternalServerError)
		return
	}
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	NewJSONResponse().
		Status(status).
		Data(errorBody{Error: errorDetail{Code: code, Message: message, RequestID: trace.GetRequestID(r.Context())}}).
		Write(w)
}

// writeRunError maps pipeline errors to status codes.
func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	switch {
	case errors.Is(err, core.ErrInvalidRange):
		writeError(w, r, http.StatusBadRequest, codeInvalidRange, err.Error())
	case errors.Is(err, core.ErrInvalidHorizon):
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.ErrorContext(ctx, "Dashboard timed out", applog.FieldError, err)
		writeError(w, r, http.StatusGatewayTimeout, codeTimeout, "transaction source timed out")
	case errors.Is(err, services.ErrSource):
		logger.ErrorContext(ctx, "Source fetch failed", applog.FieldError, err)
		writeError(w, r, http.StatusBadGateway, codeSourceUnavailable, "transaction source unavailable")
	default:
		logger.ErrorContext(ctx, "Dashboard failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
