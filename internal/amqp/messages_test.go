package amqp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func TestNewPaymentRecordedMessage(t *testing.T) {
	team, _ := core.NewTeam("CodeCrafters")
	member, err := core.NewMember("Ana", "Lopez", "clave1234", team, core.NewDate(2020, 2, 10), core.Manager)
	if err != nil {
		t.Fatalf("NewMember: %v", err)
	}
	if err := member.Enroll(nil, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	category, _ := core.NewCategory("Licencias", "Software")

	tests := []struct {
		name      string
		payment   func() (*core.Payment, error)
		wantDate  string
		wantTotal string
	}{
		{
			name: "one-time cash",
			payment: func() (*core.Payment, error) {
				return core.NewOneTimePayment(core.Cash, category, member, "IDE", decimal.NewFromInt(100), core.NewDate(2024, 5, 3), "A-1")
			},
			wantDate:  "2024-05-03",
			wantTotal: "80",
		},
		{
			name: "open-ended recurring",
			payment: func() (*core.Payment, error) {
				return core.NewRecurringPayment(core.Debit, category, member, "Hosting", decimal.NewFromInt(200), core.NewDate(2024, 1, 1), core.Date{}, 0)
			},
			wantDate:  "2024-01-01",
			wantTotal: "206",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.payment()
			if err != nil {
				t.Fatalf("build payment: %v", err)
			}
			p.ID = 42

			msg := NewPaymentRecordedMessage(p)

			if _, err := uuid.Parse(msg.EventID); err != nil {
				t.Errorf("EventID %q is not a uuid", msg.EventID)
			}
			if msg.PaymentID != 42 || msg.Member != "analop@laEmpresa.com" || msg.MemberName != "Ana Lopez" || msg.Team != "CodeCrafters" || msg.Category != "Licencias" {
				t.Errorf("unexpected message %+v", msg)
			}
			if msg.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", msg.Date, tt.wantDate)
			}
			if !msg.Total.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", msg.Total, tt.wantTotal)
			}
			if msg.Status != p.Status() {
				t.Errorf("Status = %q, want %q", msg.Status, p.Status())
			}
			if time.Since(msg.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent")
			}
		})
	}

	first := NewPaymentRecordedMessage(&core.Payment{ID: 1, Kind: core.OneTime, OneTime: &core.OneTimeDetails{}})
	second := NewPaymentRecordedMessage(&core.Payment{ID: 1, Kind: core.OneTime, OneTime: &core.OneTimeDetails{}})
	if first.EventID == second.EventID {
		t.Errorf("events share an id")
	}
}

func TestPaymentRecordedMessageFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"event_id":"4b5c1f36-0f5e-4a2b-9d3c-7e0e3e7f1a10","payment_id":3,"amount":"10.50"}`, false},
		{"wrong type", `{"event_id":"4b5c1f36-0f5e-4a2b-9d3c-7e0e3e7f1a10","payment_id":"three"}`, true},
		{"missing event id", `{"payment_id":3}`, true},
		{"missing payment id", `{"event_id":"4b5c1f36-0f5e-4a2b-9d3c-7e0e3e7f1a10"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := PaymentRecordedMessageFromJSON([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !msg.Amount.Equal(decimal.RequireFromString("10.50")) {
				t.Fatalf("Amount = %s", msg.Amount)
			}
		})
	}
}
