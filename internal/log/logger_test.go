package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf}).WithComponent(ComponentPipeline)
	l.Info("run finished", FieldRows, 3)
	l.Debug("hidden")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentPipeline || rec[FieldRows] != float64(3) {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentHTTP})
	ctx := NewContext(context.Background(), l.With(FieldRequestID, "r1"))
	FromContext(ctx).InfoContext(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=r1") || !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestFields(t *testing.T) {
	f := NewFields().WithRunID("abc").WithError(errors.New("boom")).WithOperation(OpFetch).WithError(nil)
	if f[FieldRunID] != "abc" || f[FieldError] != "boom" || f[FieldOperation] != OpFetch {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 6 {
		t.Fatalf("expected 6 slice entries, got %d", len(f.ToSlice()))
	}
	h := NewFields().WithHTTPResponse(502, 12)
	if h[FieldSuccess] != false {
		t.Fatalf("5xx must not be success")
	}
}
