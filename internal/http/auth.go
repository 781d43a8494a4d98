package http

import (
	"context"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

type ctxKey int

const memberKey ctxKey = iota

// authenticate checks HTTP Basic credentials against the registry and stores
// the member in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w, "credentials required")
			return
		}
		m, err := s.service.Registry().Authenticate(identifier, password)
		if err != nil {
			metrics.HTTPRejected.WithLabelValues("unauthorized").Inc()
			log.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
				log.FieldMember, identifier,
				log.FieldClientIP, s.detector.ClientIP(r))
			unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), memberKey, m)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldMember, m.Identifier()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="gastos", charset="UTF-8"`)
	ErrorResponse(http.StatusUnauthorized, msg).Write(w)
}

// requireManager answers 403 unless the caller is a manager.
func requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m := memberFrom(r.Context()); m == nil || !m.IsManager() {
			metrics.HTTPRejected.WithLabelValues("forbidden").Inc()
			ErrorResponse(http.StatusForbidden, "manager role required").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func memberFrom(ctx context.Context) *core.Member {
	m, _ := ctx.Value(memberKey).(*core.Member)
	return m
}
