package session

import (
	"context"
	"net/http"
	"time"

	"expo-portal/internal/logger"

	"github.com/google/uuid"
)

type contextKey string

const sessionKeyCtx contextKey = "session"

// Manager issues the session cookie and binds a Session to each request.
type Manager struct {
	Store      Store
	CookieName string
	Secure     bool
	TTL        time.Duration
	// TokenTTL derives the auth lifetime from the login token.
	TokenTTL func(token string) time.Duration
	Logger   *logger.Logger
}

func NewManager(store Store, cookieName string, secure bool, ttl time.Duration, log *logger.Logger) *Manager {
	if cookieName == "" {
		cookieName = "expo_session"
	}
	return &Manager{Store: store, CookieName: cookieName, Secure: secure, TTL: ttl, Logger: log}
}

// Open returns the session for id.
func (m *Manager) Open(id string) *Session {
	return New(id, m.Store, m.TTL, m.TokenTTL, m.Logger)
}

// Middleware attaches the request's Session to its context, issuing a new
// cookie when the browser has none or an invalid one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(m.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     m.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   m.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			m.Logger.LogSession("issue", id, "new session cookie")
		}

		ctx := WithSession(r.Context(), m.Open(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKeyCtx, s)
}

// FromContext returns the request's session, or nil outside Middleware.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKeyCtx).(*Session); ok {
		return s
	}
	return nil
}
