package http

import (
	"gastos/internal/core"
	"gastos/internal/services"
)

type (
	teamResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	memberResponse struct {
		Identifier string `json:"identifier"`
		Name       string `json:"name"`
		Surname    string `json:"surname"`
		Team       string `json:"team"`
		JoinedAt   string `json:"joined_at"`
		Role       string `json:"role"`
	}

	categoryResponse struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	paymentResponse struct {
		ID          int64  `json:"id"`
		Kind        string `json:"kind"`
		Method      string `json:"method"`
		Member      string `json:"member"`
		MemberName  string `json:"member_name"`
		Team        string `json:"team"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Total       string `json:"total"`
		Status      string `json:"status"`

		Date    string `json:"date,omitempty"`
		Receipt string `json:"receipt,omitempty"`

		Start            string `json:"start,omitempty"`
		End              string `json:"end,omitempty"`
		Installments     int    `json:"installments,omitempty"`
		InstallmentsPaid int    `json:"installments_paid,omitempty"`
	}

	profileResponse struct {
		Member       memberResponse   `json:"member"`
		Month        string           `json:"month"`
		MonthlySpend string           `json:"monthly_spend"`
		Teammates    []memberResponse `json:"teammates"`
	}

	membersResponse struct {
		Members []memberResponse `json:"members"`
		// Available is set for identifier lookups and reports whether no
		// member holds the identifier yet.
		Available *bool `json:"available,omitempty"`
	}
)

type (
	paymentRequest struct {
		Kind             string         `json:"kind"`
		Method           string         `json:"method"`
		Category         string         `json:"category"`
		Member           string         `json:"member"`
		Description      string         `json:"description"`
		Amount           flexibleAmount `json:"amount"`
		Date             string         `json:"date"`
		Receipt          string         `json:"receipt"`
		Start            string         `json:"start"`
		End              string         `json:"end"`
		InstallmentsPaid int            `json:"installments_paid"`
	}

	memberRequest struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Password string `json:"password"`
		Team     string `json:"team"`
		JoinedAt string `json:"joined_at"`
		Role     string `json:"role"`
	}

	categoryRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
)

func (p paymentRequest) input() services.PaymentInput {
	return services.PaymentInput{
		Kind:             p.Kind,
		Method:           p.Method,
		Category:         sanitizeInput(p.Category),
		Member:           sanitizeInput(p.Member),
		Description:      sanitizeInput(p.Description),
		Amount:           string(p.Amount),
		Date:             p.Date,
		Receipt:          sanitizeInput(p.Receipt),
		Start:            p.Start,
		End:              p.End,
		InstallmentsPaid: p.InstallmentsPaid,
	}
}

func (m memberRequest) input() services.MemberInput {
	return services.MemberInput{
		Name:     sanitizeInput(m.Name),
		Surname:  sanitizeInput(m.Surname),
		Password: m.Password,
		Team:     sanitizeInput(m.Team),
		JoinedAt: m.JoinedAt,
		Role:     m.Role,
	}
}

func toTeam(t *core.Team) teamResponse {
	return teamResponse{ID: t.ID, Name: t.Name}
}

func toMember(m *core.Member) memberResponse {
	resp := memberResponse{
		Identifier: m.Identifier(),
		Name:       m.Name,
		Surname:    m.Surname,
		JoinedAt:   m.JoinedAt.String(),
		Role:       string(m.Role),
	}
	if m.Team != nil {
		resp.Team = m.Team.Name
	}
	return resp
}

func toMembers(members []*core.Member) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = toMember(m)
	}
	return out
}

func toCategory(c *core.Category) categoryResponse {
	return categoryResponse{Name: c.Name, Description: c.Description}
}

func toPayment(p *core.Payment) paymentResponse {
	resp := paymentResponse{
		ID:          p.ID,
		Kind:        string(p.Kind),
		Method:      string(p.Method),
		Description: p.Description,
		Amount:      core.FormatAmount(p.Amount),
		Total:       core.FormatAmount(p.Total()),
		Status:      p.Status(),
	}
	if p.Member != nil {
		resp.Member = p.Member.Identifier()
		resp.MemberName = p.Member.FullName()
		if p.Member.Team != nil {
			resp.Team = p.Member.Team.Name
		}
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	switch p.Kind {
	case core.OneTime:
		resp.Date = p.OneTime.Date.String()
		resp.Receipt = p.OneTime.Receipt
	case core.Recurring:
		resp.Start = p.Recurring.Start.String()
		resp.End = p.Recurring.End.String()
		resp.Installments = p.Recurring.Installments()
		resp.InstallmentsPaid = p.Recurring.InstallmentsPaid
	}
	return resp
}

func toPayments(payments []*core.Payment) []paymentResponse {
	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPayment(p)
	}
	return out
}
