package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	def := core.Month{Year: 2024, Month: time.May}
	tests := []struct {
		name    string
		query   string
		want    core.Month
		wantErr bool
	}{
		{"defaults", "", def, false},
		{"month only", "month=2", core.Month{Year: 2024, Month: time.February}, false},
		{"year and month", "year=2023&month=12", core.Month{Year: 2023, Month: time.December}, false},
		{"trimmed", "month=%203%20", core.Month{Year: 2024, Month: time.March}, false},
		{"month zero", "month=0", core.Month{}, true},
		{"month thirteen", "month=13", core.Month{}, true},
		{"year text", "year=last", core.Month{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseMonthParams(q, def)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseMonthParams() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Eventos","description":"Ferias"}`, false},
		{"unknown field", `{"name":"Eventos","extra":1}`, true},
		{"trailing object", `{"name":"A"}{"name":"B"}`, true},
		{"empty", ``, true},
		{"not json", `name=Eventos`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst categoryRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrInvalidArgument) {
				t.Fatalf("error %v does not wrap ErrInvalidArgument", err)
			}
		})
	}
}

func TestFlexibleAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`"12,50"`, "12,50", false},
		{`12.5`, "12.5", false},
		{`true`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var a flexibleAmount
			err := json.Unmarshal([]byte(tt.raw), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(a) != tt.want {
				t.Fatalf("amount = %q, want %q", a, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Silla\x00 de\toficina\x07 "); got != "Silla de\toficina" {
		t.Fatalf("sanitizeInput() = %q", got)
	}
}
