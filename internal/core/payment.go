package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Cash   PaymentMethod = "CASH"
	Credit PaymentMethod = "CREDIT"
	Debit  PaymentMethod = "DEBIT"
)

const (
	OneTime   PaymentKind = "one_time"
	Recurring PaymentKind = "recurring"
)

type (
	PaymentMethod string

	// PaymentKind tags the variant carried by a Payment.
	PaymentKind string

	// Payment is a closed union over one-time and recurring payments. Exactly
	// one of OneTime or Recurring is set, matching Kind.
	Payment struct {
		ID          int64 // assigned by the registry
		Kind        PaymentKind
		Method      PaymentMethod
		Category    *Category
		Member      *Member
		Description string
		Amount      decimal.Decimal

		OneTime   *OneTimeDetails
		Recurring *RecurringDetails
	}

	OneTimeDetails struct {
		Date    Date
		Receipt string
	}

	// RecurringDetails describes a monthly charge. An empty End means the
	// payment has no end date.
	RecurringDetails struct {
		Start            Date
		End              Date
		InstallmentsPaid int
	}
)

func (m PaymentMethod) Validate() error {
	switch m {
	case Cash, Credit, Debit:
		return nil
	default:
		return ErrInvalidMethod
	}
}

// ParsePaymentMethod accepts the method names case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func NewOneTimePayment(method PaymentMethod, category *Category, member *Member, description string, amount decimal.Decimal, date Date, receipt string) (*Payment, error) {
	p := &Payment{
		Kind:        OneTime,
		Method:      method,
		Category:    category,
		Member:      member,
		Description: description,
		Amount:      amount,
		OneTime:     &OneTimeDetails{Date: date, Receipt: receipt},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewRecurringPayment builds a recurring payment. Pass an empty end date for
// an open-ended payment.
func NewRecurringPayment(method PaymentMethod, category *Category, member *Member, description string, amount decimal.Decimal, start, end Date, installmentsPaid int) (*Payment, error) {
	p := &Payment{
		Kind:        Recurring,
		Method:      method,
		Category:    category,
		Member:      member,
		Description: description,
		Amount:      amount,
		Recurring:   &RecurringDetails{Start: start, End: end, InstallmentsPaid: installmentsPaid},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := p.Method.Validate(); err != nil {
		return err
	}
	if p.Category == nil {
		return ErrMissingCategory
	}
	if p.Member == nil {
		return ErrMissingMember
	}

	switch p.Kind {
	case OneTime:
		if p.OneTime == nil || p.Recurring != nil {
			return ErrMismatchedDetails
		}
		return p.OneTime.Validate()
	case Recurring:
		if p.Recurring == nil || p.OneTime != nil {
			return ErrMismatchedDetails
		}
		return p.Recurring.Validate()
	default:
		return ErrUnknownKind
	}
}

func (d OneTimeDetails) Validate() error {
	if err := d.Date.Validate(); err != nil {
		return fmt.Errorf("invalid payment date: %w", err)
	}
	if strings.TrimSpace(d.Receipt) == "" {
		return ErrEmptyReceipt
	}
	return nil
}

func (d RecurringDetails) Validate() error {
	if err := d.Start.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !d.End.IsEmpty() && !d.End.After(d.Start.Time) {
		return ErrEndBeforeStart
	}
	if d.InstallmentsPaid < 0 {
		return ErrNegativePaid
	}
	if !d.End.IsEmpty() && d.InstallmentsPaid > d.Installments() {
		return ErrTooManyPaid
	}
	return nil
}

// Installments returns the number of monthly installments between start and
// end, both inclusive. Zero means the payment has no end date.
func (d RecurringDetails) Installments() int {
	if d.End.IsEmpty() {
		return 0
	}
	return monthsBetween(d.Start.Month(), d.End.Month())
}

// OpenEnded reports whether the payment runs without an end date.
func (d RecurringDetails) OpenEnded() bool {
	return d.End.IsEmpty()
}

// Total computes the payment's value after discounts or surcharges.
func (p *Payment) Total() decimal.Decimal {
	switch p.Kind {
	case OneTime:
		rate := otherDiscountRate
		if p.Method == Cash {
			rate = cashDiscountRate
		}
		return p.Amount.Sub(p.Amount.Mul(rate))
	case Recurring:
		if p.Recurring.OpenEnded() {
			return p.Amount.Add(p.Amount.Mul(openEndedRate))
		}
		n := p.Recurring.Installments()
		total := p.Amount.Mul(decimal.NewFromInt(int64(n)))
		return total.Add(total.Mul(planSurchargeRate(n)))
	}
	return decimal.Zero
}

func planSurchargeRate(installments int) decimal.Decimal {
	switch {
	case installments > 10:
		return longPlanRate
	case installments >= 6:
		return mediumPlanRate
	default:
		return shortPlanRate
	}
}

// Status describes the payment's progress in human-readable form.
func (p *Payment) Status() string {
	switch p.Kind {
	case OneTime:
		return "Pago único - Recibo: " + p.OneTime.Receipt
	case Recurring:
		if p.Recurring.OpenEnded() {
			return "recurrente"
		}
		pending := p.Recurring.Installments() - p.Recurring.InstallmentsPaid
		if pending <= 0 {
			return "pagado completamente"
		}
		return fmt.Sprintf("%d cuotas pendientes", pending)
	}
	return ""
}

// ActiveIn reports whether the payment counts towards the given month.
func (p *Payment) ActiveIn(m Month) bool {
	switch p.Kind {
	case OneTime:
		return p.OneTime.Date.Month() == m
	case Recurring:
		if p.Recurring.Start.Month().Compare(m) > 0 {
			return false
		}
		return p.Recurring.OpenEnded() || p.Recurring.End.Month().Compare(m) >= 0
	}
	return false
}

// Clone returns a copy that does not share detail records with p.
func (p *Payment) Clone() *Payment {
	c := *p
	if p.OneTime != nil {
		d := *p.OneTime
		c.OneTime = &d
	}
	if p.Recurring != nil {
		d := *p.Recurring
		c.Recurring = &d
	}
	return &c
}

func (p *Payment) update(apply func(*Payment)) error {
	candidate := p.Clone()
	apply(candidate)
	if err := candidate.Validate(); err != nil {
		return err
	}
	*p = *candidate
	return nil
}

func (p *Payment) SetDescription(description string) error {
	return p.update(func(c *Payment) { c.Description = description })
}

func (p *Payment) SetAmount(amount decimal.Decimal) error {
	return p.update(func(c *Payment) { c.Amount = amount })
}

func (p *Payment) SetMethod(method PaymentMethod) error {
	return p.update(func(c *Payment) { c.Method = method })
}

func (p *Payment) SetCategory(category *Category) error {
	return p.update(func(c *Payment) { c.Category = category })
}

func (p *Payment) SetReceipt(receipt string) error {
	if p.Kind != OneTime {
		return ErrMismatchedDetails
	}
	return p.update(func(c *Payment) { c.OneTime.Receipt = receipt })
}

// SetEnd changes the end date of a recurring payment. An empty date makes it
// open-ended.
func (p *Payment) SetEnd(end Date) error {
	if p.Kind != Recurring {
		return ErrMismatchedDetails
	}
	return p.update(func(c *Payment) { c.Recurring.End = end })
}

func (p *Payment) SetInstallmentsPaid(n int) error {
	if p.Kind != Recurring {
		return ErrMismatchedDetails
	}
	return p.update(func(c *Payment) { c.Recurring.InstallmentsPaid = n })
}
