package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gastos/internal/core"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.service.Profile(r.Context(), memberFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(profileResponse{
		Member:       toMember(profile.Member),
		Month:        s.service.Registry().CurrentMonth().String(),
		MonthlySpend: core.FormatAmount(profile.MonthlySpend),
		Teammates:    toMembers(profile.Teammates),
	}).Write(w)
}

func (s *Server) handleMyPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.service.CurrentPaymentsOf(r.Context(), memberFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toPayments(payments)).Write(w)
}

func (s *Server) handleCurrentPayments(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(toPayments(s.service.CurrentPayments(r.Context()))).Write(w)
}

func (s *Server) handleListTeams(w http.ResponseWriter, _ *http.Request) {
	teams := s.service.Registry().Teams()
	out := make([]teamResponse, len(teams))
	for i, t := range teams {
		out[i] = toTeam(t)
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleTeamMembers(w http.ResponseWriter, r *http.Request) {
	reg := s.service.Registry()
	team, err := reg.TeamByName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	members, err := reg.TeamMembersSorted(team)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toMembers(members)).Write(w)
}

func (s *Server) handleTeamPayments(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParams(r.URL.Query(), s.service.Registry().CurrentMonth())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.service.TeamPaymentsForMonth(r.Context(), chi.URLParam(r, "name"), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toPayments(payments)).Write(w)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	reg := s.service.Registry()
	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	if identifier == "" {
		NewJSONResponse().Body(membersResponse{Members: toMembers(reg.Members())}).Write(w)
		return
	}
	found := reg.MembersByIdentifier(identifier)
	available := len(found) == 0
	NewJSONResponse().Body(membersResponse{Members: toMembers(found), Available: &available}).Write(w)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.service.CreateMember(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toMember(m)).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	categories := s.service.Registry().Categories()
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategory(c)
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.service.AddCategory(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toCategory(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveCategory(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleCreatePayment records a payment. The member defaults to the caller;
// only managers may record payments for someone else.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	caller := memberFrom(r.Context())
	in := req.input()
	if in.Member == "" {
		in.Member = caller.Identifier()
	}
	if in.Member != caller.Identifier() && !caller.IsManager() {
		ErrorResponse(http.StatusForbidden, "only managers may record payments for other members").Write(w)
		return
	}

	p, err := s.service.CreatePayment(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/payments/%d", p.ID)).
		Body(toPayment(p)).
		Write(w)
}

// handleGetPayment returns one payment. Employees only see their own and
// get 404 for anyone else's.
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := paymentID(w, r)
	if !ok {
		return
	}
	p, err := s.service.Registry().Payment(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller := memberFrom(r.Context())
	if !caller.IsManager() && p.Member.Identifier() != caller.Identifier() {
		ErrorResponse(http.StatusNotFound, fmt.Sprintf("payment %d: not found", id)).Write(w)
		return
	}
	NewJSONResponse().Body(toPayment(p)).Write(w)
}

func (s *Server) handleRecordInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := paymentID(w, r)
	if !ok {
		return
	}
	p, err := s.service.RecordInstallment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toPayment(p)).Write(w)
}

func paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		ErrorResponse(http.StatusBadRequest, "payment id must be a positive integer").Write(w)
		return 0, false
	}
	return id, true
}
