package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestNewJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentRegistry, Format: FormatJSON, Output: &buf})

	logger.Debug("hidden")
	logger.Info("payment added", FieldPaymentID, 7)
	logger.WithComponent(ComponentCache).Warn("evicted")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %s", len(records), buf.String())
	}
	if records[0][FieldComponent] != ComponentRegistry || records[0][FieldPaymentID] != float64(7) {
		t.Errorf("unexpected first record %v", records[0])
	}
	if records[1][FieldSubcomponent] != ComponentCache {
		t.Errorf("unexpected second record %v", records[1])
	}
	if logger.Component() != ComponentRegistry {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestTintFormatWritesRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatTint, Output: &buf})
	logger.Info("ready", "port", 8081)

	if !strings.Contains(buf.String(), "ready") || !strings.Contains(buf.String(), "8081") {
		t.Fatalf("unexpected tint output %q", buf.String())
	}
}

func TestFieldsWithPayment(t *testing.T) {
	f := NewFields().WithPayment(3, "one_time", "annlee@laEmpresa.com", "Oficina", decimal.RequireFromString("12.5")).WithError(nil)

	if f[FieldAmount] != "12.50" {
		t.Errorf("amount = %v", f[FieldAmount])
	}
	if _, ok := f[FieldError]; ok {
		t.Errorf("nil error should not be recorded")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice() length mismatch")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Format: FormatJSON, Output: &buf})

	var fromCtx *Logger
	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/teams?x=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if fromCtx == nil || fromCtx.Component() != ComponentHTTP {
		t.Fatalf("request logger missing from context")
	}
	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec["level"] != "WARN" || rec[FieldStatusCode] != float64(404) || rec[FieldPath] != "/api/teams" {
		t.Errorf("unexpected record %v", rec)
	}
	if rec[FieldRequestID] == nil || rec[FieldRequestID] == "" {
		t.Errorf("request id not logged: %v", rec)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Logger == nil {
		t.Fatal("expected default logger")
	}
}
