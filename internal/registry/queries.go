package registry

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Every query returns a new slice. Callers may reorder or truncate results
// without affecting the registry.

func (r *Registry) Teams() []*core.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*core.Team(nil), r.teams...)
}

// TeamByName returns the first team whose name matches exactly.
func (r *Registry) TeamByName(name string) (*core.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("team %q: %w", name, core.ErrNotFound)
}

func (r *Registry) Members() []*core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*core.Member(nil), r.members...)
}

// MembersByIdentifier returns the members whose identifier equals id. At
// most one member can match.
func (r *Registry) MembersByIdentifier(id string) []*core.Member {
	return r.filterMembers(func(m *core.Member) bool { return m.Identifier() == id })
}

// Member returns the member with the given identifier.
func (r *Registry) Member(id string) (*core.Member, error) {
	if found := r.MembersByIdentifier(id); len(found) > 0 {
		return found[0], nil
	}
	return nil, fmt.Errorf("member %q: %w", id, core.ErrNotFound)
}

func (r *Registry) MembersByTeam(teamName string) []*core.Member {
	return r.filterMembers(func(m *core.Member) bool { return m.Team.Name == teamName })
}

// TeamMembersSorted returns the members of team ordered by identifier.
func (r *Registry) TeamMembersSorted(team *core.Team) ([]*core.Member, error) {
	if team == nil {
		return nil, fmt.Errorf("team members: %w", core.ErrNullArgument)
	}
	members := r.filterMembers(func(m *core.Member) bool { return m.Team.ID == team.ID })
	SortByIdentifier(members)
	return members, nil
}

// IdentifierAvailable reports whether no member uses id yet.
func (r *Registry) IdentifierAvailable(id string) bool {
	return len(r.MembersByIdentifier(id)) == 0
}

func (r *Registry) Categories() []*core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*core.Category(nil), r.categories...)
}

func (r *Registry) CategoryByName(name string) (*core.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.categoryIndex(name); i >= 0 {
		return r.categories[i], nil
	}
	return nil, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
}

func (r *Registry) Payments() []*core.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*core.Payment(nil), r.payments...)
}

func (r *Registry) Payment(id int64) (*core.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.paymentByID(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("payment %d: %w", id, core.ErrNotFound)
}

// PaymentsByMember returns the payments made by the member with identifier id.
func (r *Registry) PaymentsByMember(id string) []*core.Payment {
	return r.filterPayments(func(p *core.Payment) bool { return p.Member.Identifier() == id })
}

// PaymentsByTeamMonth returns the payments of the team's members that are
// active in month.
func (r *Registry) PaymentsByTeamMonth(team *core.Team, month core.Month) ([]*core.Payment, error) {
	if team == nil {
		return nil, fmt.Errorf("team payments: %w", core.ErrNullArgument)
	}
	return r.filterPayments(func(p *core.Payment) bool {
		return p.Member.Team.ID == team.ID && p.ActiveIn(month)
	}), nil
}

// PaymentsByMemberMonth returns the member's payments active in month.
func (r *Registry) PaymentsByMemberMonth(member *core.Member, month core.Month) ([]*core.Payment, error) {
	if member == nil {
		return nil, fmt.Errorf("member payments: %w", core.ErrNullArgument)
	}
	id := member.Identifier()
	return r.filterPayments(func(p *core.Payment) bool {
		return p.Member.Identifier() == id && p.ActiveIn(month)
	}), nil
}

// CurrentPayments returns every payment active in the current month.
func (r *Registry) CurrentPayments() []*core.Payment {
	month := r.CurrentMonth()
	return r.filterPayments(func(p *core.Payment) bool { return p.ActiveIn(month) })
}

// CurrentPaymentsByMember returns the member's payments active in the
// current month.
func (r *Registry) CurrentPaymentsByMember(member *core.Member) ([]*core.Payment, error) {
	return r.PaymentsByMemberMonth(member, r.CurrentMonth())
}

// TotalMonthlySpend sums the base amounts of the member's payments active in
// the current month. Discounts and surcharges are not applied.
func (r *Registry) TotalMonthlySpend(member *core.Member) (decimal.Decimal, error) {
	payments, err := r.CurrentPaymentsByMember(member)
	if err != nil {
		return decimal.Zero, fmt.Errorf("monthly spend: %w", err)
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

func (r *Registry) filterMembers(keep func(*core.Member) bool) []*core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Member, 0)
	for _, m := range r.members {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) filterPayments(keep func(*core.Payment) bool) []*core.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Payment, 0)
	for _, p := range r.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
