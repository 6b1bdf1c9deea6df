package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (domain.Actor, error)
}

// Auth resolves the caller from the bearer token. Requests without a valid
// token are rejected with 401 before reaching the handler.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}
			actor, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}
			reportActor(r.Context(), actor.ID)
			ctx := ctxutil.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not listed with 403.
// It must run after Auth.
func RequireRole(roles ...domain.UserRole) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ctxutil.ActorFromCtx(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, domain.NewRuleError(domain.ErrForbidden, "Permission denied"))
		})
	}
}

// RequirePrivileged allows managers and admins.
func RequirePrivileged() Middleware {
	return RequireRole(domain.UserRoleManager, domain.UserRoleAdmin)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
