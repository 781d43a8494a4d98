// Package registry keeps every team, member, category and payment of the
// organisation in memory and answers queries over them.
//
// A Registry is created explicitly by the process entry point and shared by
// reference. Writes take an exclusive lock, reads share it, so a read that
// starts after a write returns observes that write.
package registry

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"gastos/internal/core"
)

type Registry struct {
	mu sync.RWMutex

	teams      []*core.Team
	members    []*core.Member
	categories []*core.Category
	payments   []*core.Payment

	nextTeamID    int64
	nextPaymentID int64

	now    func() time.Time
	domain string
}

// Option customises a Registry.
type Option func(*Registry)

// WithClock sets the time source used to decide the current month.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIdentifierDomain sets the domain appended to member identifiers.
func WithIdentifierDomain(domain string) Option {
	return func(r *Registry) {
		if domain != "" {
			r.domain = domain
		}
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		nextTeamID:    1,
		nextPaymentID: 1,
		now:           time.Now,
		domain:        core.DefaultIdentifierDomain,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentMonth returns the month that "this month" queries use.
func (r *Registry) CurrentMonth() core.Month {
	return core.MonthOf(r.now())
}

func (r *Registry) AddTeam(t *core.Team) error {
	if t == nil {
		return fmt.Errorf("add team: %w", core.ErrNullArgument)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("add team: %w", err)
	}
	if t.ID != 0 {
		return fmt.Errorf("add team %d: %w", t.ID, core.ErrAlreadyRegistered)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextTeamID
	r.nextTeamID++
	r.teams = append(r.teams, t)
	return nil
}

// AddMember validates m and enrolls it with an identifier that is unique
// among the registered members. A member that already has an identifier is
// rejected.
func (r *Registry) AddMember(m *core.Member) error {
	if m == nil {
		return fmt.Errorf("add member: %w", core.ErrNullArgument)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if id := m.Identifier(); id != "" {
		return fmt.Errorf("add member %s: %w", id, core.ErrAlreadyRegistered)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := m.Enroll(r.members, r.domain); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	r.members = append(r.members, m)
	return nil
}

func (r *Registry) AddCategory(c *core.Category) error {
	if c == nil {
		return fmt.Errorf("add category: %w", core.ErrNullArgument)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add category: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryIndex(c.Name) >= 0 {
		return fmt.Errorf("add category: %w: category %q already exists", core.ErrValidation, c.Name)
	}
	r.categories = append(r.categories, c)
	return nil
}

// AddPayment validates p and assigns the next id. One-time and recurring
// payments share the same id sequence. A payment that already has an id is
// rejected.
func (r *Registry) AddPayment(p *core.Payment) error {
	if p == nil {
		return fmt.Errorf("add payment: %w", core.ErrNullArgument)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("add payment: %w", err)
	}
	if p.ID != 0 {
		return fmt.Errorf("add payment %d: %w", p.ID, core.ErrAlreadyRegistered)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextPaymentID
	r.nextPaymentID++
	r.payments = append(r.payments, p)
	return nil
}

// CreateMember builds a member for the first team named teamName and
// registers it.
func (r *Registry) CreateMember(name, surname, password, teamName string, joinedAt core.Date, role core.Role) (*core.Member, error) {
	team, err := r.TeamByName(teamName)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	m, err := core.NewMember(name, surname, password, team, joinedAt, role)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	if err := r.AddMember(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveCategory deletes c unless a payment still references a category with
// the same name. The boolean reports whether the category was removed.
func (r *Registry) RemoveCategory(c *core.Category) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("remove category: %w", core.ErrNullArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.Category.Name == c.Name {
			return false, nil
		}
	}
	if i := r.categoryIndex(c.Name); i >= 0 {
		r.categories = slices.Delete(r.categories, i, i+1)
	}
	return true, nil
}

// RecordInstallment marks one more installment of a recurring payment as
// paid. The registry swaps in an updated copy, so payments already handed to
// readers never change underneath them.
func (r *Registry) RecordInstallment(paymentID int64) (*core.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.payments, func(p *core.Payment) bool { return p.ID == paymentID })
	if i < 0 {
		return nil, fmt.Errorf("record installment %d: %w", paymentID, core.ErrNotFound)
	}
	if r.payments[i].Kind != core.Recurring {
		return nil, fmt.Errorf("record installment %d: %w", paymentID, core.ErrMismatchedDetails)
	}
	updated := r.payments[i].Clone()
	if err := updated.SetInstallmentsPaid(updated.Recurring.InstallmentsPaid + 1); err != nil {
		return nil, fmt.Errorf("record installment %d: %w", paymentID, err)
	}
	r.payments[i] = updated
	return updated, nil
}

// RenameTeam renames a registered team under the write lock.
func (r *Registry) RenameTeam(team *core.Team, name string) error {
	if team == nil {
		return fmt.Errorf("rename team: %w", core.ErrNullArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.teams, team) {
		return fmt.Errorf("rename team %d: %w", team.ID, core.ErrNotFound)
	}
	candidate := *team
	if err := candidate.Rename(name); err != nil {
		return fmt.Errorf("rename team %d: %w", team.ID, err)
	}
	*team = candidate
	return nil
}

// UpdateMember applies update to a copy of the member with the given
// identifier and commits it under the write lock when the copy is valid and
// still belongs to a registered team. The identifier never changes.
func (r *Registry) UpdateMember(id string, update func(*core.Member) error) (*core.Member, error) {
	if update == nil {
		return nil, fmt.Errorf("update member: %w", core.ErrNullArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.members, func(m *core.Member) bool { return m.Identifier() == id })
	if i < 0 {
		return nil, fmt.Errorf("update member %q: %w", id, core.ErrNotFound)
	}
	m := r.members[i]
	candidate := *m
	if err := update(&candidate); err != nil {
		return nil, fmt.Errorf("update member %q: %w", id, err)
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("update member %q: %w", id, err)
	}
	if !slices.Contains(r.teams, candidate.Team) {
		return nil, fmt.Errorf("update member %q: team: %w", id, core.ErrNotFound)
	}
	*m = candidate
	return m, nil
}

func (r *Registry) categoryIndex(name string) int {
	return slices.IndexFunc(r.categories, func(c *core.Category) bool { return c.Name == name })
}

func (r *Registry) paymentByID(id int64) *core.Payment {
	for _, p := range r.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}
