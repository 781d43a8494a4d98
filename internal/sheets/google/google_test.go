package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/log"
	ports "gastos/internal/sheets"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Pagos", 2024, "2024 Pagos"},
		{"  Pagos ", 2023, "2023 Pagos"},
		{"2022 Pagos", 2024, "2022 Pagos"},
		{"1800 Pagos", 2024, "2024 1800 Pagos"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing spreadsheet", Config{}, "missing spreadsheet id"},
		{"missing credentials", Config{SpreadsheetID: "id"}, "missing service account credentials"},
		{"unreadable file", Config{SpreadsheetID: "id", CredentialsFile: filepath.Join(os.TempDir(), "does-not-exist.json")}, "read service account file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg, quietLogger())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("New() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_AppendPaymentRejectsInvalidRows(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: "Pagos", logger: quietLogger()}

	if _, err := c.AppendPayment(context.Background(), ports.PaymentRow{}); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	valid := ports.PaymentRow{EventID: "e", PaymentID: 1, Date: core.NewDate(2024, 1, 1)}
	if _, err := c.AppendPayment(context.Background(), valid); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestClient_AppendPayment(t *testing.T) {
	var gotQuery map[string]string
	var gotBody gsheet.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":append") {
			http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
			return
		}
		gotQuery = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1","updates":{"updatedRange":"'2024 Pagos'!A7:M7","updatedRows":1}}`)
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := NewWithService(svc, "sheet-1", "", quietLogger())

	row := ports.PaymentRow{
		EventID:     "4b5c1f36-0f5e-4a2b-9d3c-7e0e3e7f1a10",
		PaymentID:   12,
		Date:        core.NewDate(2024, 5, 3),
		Kind:        "one_time",
		Method:      "CASH",
		Member:      "analop@laEmpresa.com",
		MemberName:  "Ana Lopez",
		Team:        "CodeCrafters",
		Category:    "Oficina",
		Description: "Sillas",
		Amount:      decimal.RequireFromString("150"),
		Total:       decimal.RequireFromString("120"),
		Status:      "Pago único - Recibo: A-1",
	}
	ref, err := c.AppendPayment(context.Background(), row)
	if err != nil {
		t.Fatalf("AppendPayment() error = %v", err)
	}
	if ref != "'2024 Pagos'!A7:M7" {
		t.Errorf("ref = %q", ref)
	}
	if gotQuery["valueInputOption"] != "USER_ENTERED" || gotQuery["insertDataOption"] != "INSERT_ROWS" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != len(ports.Header) {
		t.Fatalf("unexpected body %+v", gotBody.Values)
	}
	cells := gotBody.Values[0]
	if cells[0] != "2024-05-03" || cells[9] != "150.00" || cells[10] != "120.00" || cells[12] != row.EventID {
		t.Errorf("unexpected cells %v", cells)
	}
}
