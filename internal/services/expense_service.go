package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/registry"
)

// ErrCategoryInUse is returned when a category still has payments.
var ErrCategoryInUse = errors.New("category is referenced by payments")

// EventPublisher announces recorded payments to the export pipeline.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, msg *amqp.PaymentRecordedMessage) error
}

type (
	// PaymentInput is the loosely typed form of a new payment, as received
	// from the API. Member is an identifier and Category a category name.
	PaymentInput struct {
		Kind             string
		Method           string
		Category         string
		Member           string
		Description      string
		Amount           string
		Date             string
		Receipt          string
		Start            string
		End              string
		InstallmentsPaid int
	}

	MemberInput struct {
		Name     string
		Surname  string
		Password string
		Team     string
		JoinedAt string
		Role     string
	}

	// Profile summarises a member for the "my profile" view.
	Profile struct {
		Member       *core.Member
		MonthlySpend decimal.Decimal
		Teammates    []*core.Member
	}
)

// ExpenseService applies registry operations on behalf of the API and the
// CLI. It keeps the per-team monthly listings cached and publishes an event
// for every recorded payment.
type ExpenseService struct {
	registry  *registry.Registry
	publisher EventPublisher
	teamMonth cache.Cache[[]*core.Payment]
	logger    *log.Logger
	events    *log.StructuredLogger

	// generation is part of every team-month key. invalidate bumps it, so a
	// listing read before a write is never served after it.
	generation atomic.Uint64
}

// NewExpenseService wires the service. publisher and teamMonth may be nil.
func NewExpenseService(reg *registry.Registry, publisher EventPublisher, teamMonth cache.Cache[[]*core.Payment], logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		registry:  reg,
		publisher: publisher,
		teamMonth: teamMonth,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// Registry exposes the underlying registry for read-only queries.
func (s *ExpenseService) Registry() *registry.Registry {
	return s.registry
}

// CreatePayment resolves the member and category of in, builds the payment
// and records it.
func (s *ExpenseService) CreatePayment(ctx context.Context, in PaymentInput) (*core.Payment, error) {
	p, err := s.buildPayment(in)
	if err != nil {
		return nil, err
	}
	if err := s.RecordPayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ExpenseService) buildPayment(in PaymentInput) (*core.Payment, error) {
	member, err := s.registry.Member(strings.TrimSpace(in.Member))
	if err != nil {
		return nil, err
	}
	category, err := s.registry.CategoryByName(strings.TrimSpace(in.Category))
	if err != nil {
		return nil, err
	}
	method, err := core.ParsePaymentMethod(in.Method)
	if err != nil {
		return nil, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	switch core.PaymentKind(strings.ToLower(strings.TrimSpace(in.Kind))) {
	case core.OneTime:
		date, err := core.ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		return core.NewOneTimePayment(method, category, member, in.Description, amount, date, in.Receipt)
	case core.Recurring:
		start, err := core.ParseDate(in.Start)
		if err != nil {
			return nil, err
		}
		var end core.Date
		if strings.TrimSpace(in.End) != "" {
			if end, err = core.ParseDate(in.End); err != nil {
				return nil, err
			}
		}
		return core.NewRecurringPayment(method, category, member, in.Description, amount, start, end, in.InstallmentsPaid)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, in.Kind)
	}
}

// RecordPayment adds p to the registry and publishes a payment.recorded
// event. A failed publish is logged and does not fail the call.
func (s *ExpenseService) RecordPayment(ctx context.Context, p *core.Payment) error {
	if err := s.registry.AddPayment(p); err != nil {
		return err
	}
	s.invalidate()
	metrics.PaymentsRecorded.WithLabelValues(string(p.Kind)).Inc()

	s.events.LogPaymentRecorded(ctx, log.NewFields().
		WithPayment(p.ID, string(p.Kind), p.Member.Identifier(), p.Category.Name, p.Amount))

	s.publish(ctx, p)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, p *core.Payment) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewPaymentRecordedMessage(p)
	err := s.publisher.PublishPaymentRecorded(ctx, msg)
	metrics.EventsPublished.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.events.LogError(ctx, "Failed to publish payment event", err, log.OpPublish,
			log.LogFields{log.FieldPaymentID: p.ID, log.FieldEventID: msg.EventID})
	}
}

// RecordInstallment marks one more installment of a recurring payment paid.
func (s *ExpenseService) RecordInstallment(ctx context.Context, paymentID int64) (*core.Payment, error) {
	p, err := s.registry.RecordInstallment(paymentID)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	metrics.InstallmentsRecorded.Inc()
	s.logger.InfoContext(ctx, "Installment recorded",
		log.FieldPaymentID, p.ID,
		"status", p.Status())
	return p, nil
}

func (s *ExpenseService) CreateMember(ctx context.Context, in MemberInput) (*core.Member, error) {
	joined, err := core.ParseDate(in.JoinedAt)
	if err != nil {
		return nil, err
	}
	role, err := core.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	m, err := s.registry.CreateMember(in.Name, in.Surname, in.Password, strings.TrimSpace(in.Team), joined, role)
	if err != nil {
		return nil, err
	}
	metrics.MembersCreated.Inc()
	s.logger.InfoContext(ctx, "Member created",
		log.FieldMember, m.Identifier(),
		log.FieldTeam, m.Team.Name)
	return m, nil
}

func (s *ExpenseService) AddCategory(ctx context.Context, name, description string) (*core.Category, error) {
	c, err := core.NewCategory(strings.TrimSpace(name), description)
	if err != nil {
		return nil, err
	}
	if err := s.registry.AddCategory(c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Category added", log.FieldCategory, c.Name)
	return c, nil
}

// RemoveCategory deletes the named category. It fails with ErrCategoryInUse
// while payments reference it.
func (s *ExpenseService) RemoveCategory(ctx context.Context, name string) error {
	c, err := s.registry.CategoryByName(name)
	if err != nil {
		return err
	}
	removed, err := s.registry.RemoveCategory(c)
	if err != nil {
		return err
	}
	if !removed {
		metrics.CategoryRemovals.WithLabelValues(metrics.ResultInUse).Inc()
		return fmt.Errorf("remove category %q: %w", name, ErrCategoryInUse)
	}
	metrics.CategoryRemovals.WithLabelValues(metrics.ResultRemoved).Inc()
	s.logger.InfoContext(ctx, "Category removed", log.FieldCategory, name)
	return nil
}

// TeamPaymentsForMonth lists the team's payments active in month, largest
// amount first.
func (s *ExpenseService) TeamPaymentsForMonth(ctx context.Context, teamName string, month core.Month) ([]*core.Payment, error) {
	team, err := s.registry.TeamByName(teamName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("team:%d:%s:%d", team.ID, month, s.generation.Load())
	if s.teamMonth != nil {
		if cached, ok := s.teamMonth.Get(key); ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return slices.Clone(cached), nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	payments, err := s.registry.PaymentsByTeamMonth(team, month)
	if err != nil {
		return nil, err
	}
	registry.SortByAmountDesc(payments)

	if s.teamMonth != nil {
		s.teamMonth.Set(key, slices.Clone(payments))
	}
	s.logger.DebugContext(ctx, "Team payments loaded",
		log.FieldTeam, team.Name,
		log.FieldMonth, month.String(),
		"count", len(payments))
	return payments, nil
}

// MemberPaymentsForMonth lists the member's payments active in month.
func (s *ExpenseService) MemberPaymentsForMonth(_ context.Context, identifier string, month core.Month) ([]*core.Payment, error) {
	m, err := s.registry.Member(identifier)
	if err != nil {
		return nil, err
	}
	return s.registry.PaymentsByMemberMonth(m, month)
}

// CurrentPaymentsOf lists the member's payments active this month.
func (s *ExpenseService) CurrentPaymentsOf(_ context.Context, m *core.Member) ([]*core.Payment, error) {
	return s.registry.CurrentPaymentsByMember(m)
}

// CurrentPayments lists every payment active this month.
func (s *ExpenseService) CurrentPayments(_ context.Context) []*core.Payment {
	return s.registry.CurrentPayments()
}

// Profile returns the member, their spend this month and their team sorted
// by identifier.
func (s *ExpenseService) Profile(_ context.Context, m *core.Member) (*Profile, error) {
	spend, err := s.registry.TotalMonthlySpend(m)
	if err != nil {
		return nil, err
	}
	teammates, err := s.registry.TeamMembersSorted(m.Team)
	if err != nil {
		return nil, err
	}
	return &Profile{Member: m, MonthlySpend: spend, Teammates: teammates}, nil
}

func (s *ExpenseService) invalidate() {
	s.generation.Add(1)
	if s.teamMonth != nil {
		s.teamMonth.Purge()
	}
}
