// Package auth gates the exhibitor pages on a logged-in session.
package auth

import (
	"context"
	"net/http"

	"expo-portal/internal/logger"
	"expo-portal/internal/models"
	"expo-portal/internal/session"
)

type contextKey string

const (
	tokenKey   contextKey = "auth_token"
	companyKey contextKey = "company"
)

// RequireLogin redirects to /login unless the session holds both a token
// and a company. On success both are placed on the request context.
func RequireLogin(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s == nil {
				log.LogSecurity("no_session", r.URL.Path)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			token, err := s.Token(r.Context())
			if err != nil {
				log.Error("AUTH", "failed to read session token: "+err.Error())
			}
			company, cerr := s.Company(r.Context())
			if cerr != nil {
				log.Error("AUTH", "failed to read session company: "+cerr.Error())
			}

			if token == "" || company == nil {
				log.LogSecurity("login_required", r.URL.Path)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			ctx = context.WithValue(ctx, companyKey, company)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Token returns the bearer token put on the context by RequireLogin.
func Token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

func Company(ctx context.Context) *models.Company {
	if c, ok := ctx.Value(companyKey).(*models.Company); ok {
		return c
	}
	return nil
}
