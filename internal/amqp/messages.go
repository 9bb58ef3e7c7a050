package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RefreshRequest asks a worker to recompute the dashboard. Dates use
// YYYY-MM-DD; empty dates fall back to the observed bounds. A null or
// missing categories list selects every category, an empty list selects none.
type RefreshRequest struct {
	RequestID  string    `json:"request_id"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	Categories []string  `json:"categories"`
	Horizon    int       `json:"horizon,omitempty"`
	TopN       int       `json:"top_n,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRefreshRequest creates a request with a fresh ID.
func NewRefreshRequest(start, end string, categories []string) *RefreshRequest {
	return &RefreshRequest{
		RequestID:  uuid.NewString(),
		Start:      start,
		End:        end,
		Categories: categories,
		Timestamp:  time.Now(),
	}
}

// Dates parses Start and End. Empty values yield zero times.
func (m *RefreshRequest) Dates() (start, end time.Time, err error) {
	if m.Start != "" {
		if start, err = time.Parse(time.DateOnly, m.Start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q: %w", m.Start, err)
		}
	}
	if m.End != "" {
		if end, err = time.Parse(time.DateOnly, m.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q: %w", m.End, err)
		}
	}
	return start, end, nil
}

// ToJSON converts the message to JSON bytes
func (m *RefreshRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestFromJSON creates a message from JSON bytes
func RefreshRequestFromJSON(data []byte) (*RefreshRequest, error) {
	var msg RefreshRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportMessage carries the outcome of one refresh request.
type ReportMessage struct {
	RequestID string    `json:"request_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Report    any       `json:"report,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportMessage wraps a computed report.
func NewReportMessage(requestID string, report any) *ReportMessage {
	return &ReportMessage{RequestID: requestID, Status: StatusOK, Report: report, Timestamp: time.Now()}
}

// NewErrorMessage reports a request that could not be served.
func NewErrorMessage(requestID string, err error) *ReportMessage {
	return &ReportMessage{RequestID: requestID, Status: StatusError, Error: err.Error(), Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
