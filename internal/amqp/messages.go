package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// MessageTypePaymentRecorded is set as the AMQP type of payment events.
const MessageTypePaymentRecorded = "payment.recorded"

// PaymentRecordedMessage announces a payment accepted by the registry. It
// carries everything the export worker writes to the ledger, so consumers
// never need to query the registry back.
type PaymentRecordedMessage struct {
	EventID     string          `json:"event_id"`
	PaymentID   int64           `json:"payment_id"`
	Kind        string          `json:"kind"`
	Method      string          `json:"method"`
	Member      string          `json:"member"`
	MemberName  string          `json:"member_name"`
	Team        string          `json:"team"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	// Date is the payment date of a one-time payment or the start date of a
	// recurring one.
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPaymentRecordedMessage builds the event for a registered payment with a
// fresh event id.
func NewPaymentRecordedMessage(p *core.Payment) *PaymentRecordedMessage {
	msg := &PaymentRecordedMessage{
		EventID:     uuid.NewString(),
		PaymentID:   p.ID,
		Kind:        string(p.Kind),
		Method:      string(p.Method),
		Description: p.Description,
		Amount:      p.Amount,
		Total:       p.Total(),
		Status:      p.Status(),
		Timestamp:   time.Now().UTC(),
	}
	if p.Member != nil {
		msg.Member = p.Member.Identifier()
		msg.MemberName = p.Member.FullName()
		if p.Member.Team != nil {
			msg.Team = p.Member.Team.Name
		}
	}
	if p.Category != nil {
		msg.Category = p.Category.Name
	}
	switch p.Kind {
	case core.OneTime:
		msg.Date = p.OneTime.Date.String()
	case core.Recurring:
		msg.Date = p.Recurring.Start.String()
	}
	return msg
}

// Validate checks the fields the export worker relies on.
func (m *PaymentRecordedMessage) Validate() error {
	if _, err := uuid.Parse(m.EventID); err != nil {
		return fmt.Errorf("invalid event id %q: %w", m.EventID, err)
	}
	if m.PaymentID <= 0 {
		return fmt.Errorf("invalid payment id %d", m.PaymentID)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *PaymentRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentRecordedMessageFromJSON decodes and validates a message body.
func PaymentRecordedMessageFromJSON(data []byte) (*PaymentRecordedMessage, error) {
	var msg PaymentRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
