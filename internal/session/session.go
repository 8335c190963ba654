package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expo-portal/internal/logger"
	"expo-portal/internal/models"
)

const (
	keyAuthToken = "auth_token"
	keyCompany   = "company"
	keyDraft     = "registration_draft"
	keyFlash     = "flash"
)

// Flash kinds used by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Email prefills the login form after registration.
	Email string `json:"email,omitempty"`
}

// Session is the per-browser state passed explicitly to handlers.
type Session struct {
	id       string
	store    Store
	ttl      time.Duration
	tokenTTL func(token string) time.Duration
	logger   *logger.Logger
}

// New builds a session over store. tokenTTL, when set, derives the auth
// lifetime from the token itself.
func New(id string, store Store, ttl time.Duration, tokenTTL func(string) time.Duration, log *logger.Logger) *Session {
	return &Session{id: id, store: store, ttl: ttl, tokenTTL: tokenTTL, logger: log}
}

func (s *Session) ID() string { return s.id }

func (s *Session) key(name string) string {
	return sessionKey(s.id, name)
}

func (s *Session) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.Get(ctx, s.key(keyAuthToken))
	return token, err
}

// Company returns nil when no company is stored.
func (s *Session) Company(ctx context.Context) (*models.Company, error) {
	raw, ok, err := s.store.Get(ctx, s.key(keyCompany))
	if err != nil || !ok {
		return nil, err
	}
	var c models.Company
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("dropping unreadable company for %s: %v", s.id, err))
		return nil, nil
	}
	return &c, nil
}

// Authenticated reports whether both auth keys are present.
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	c, err := s.Company(ctx)
	return err == nil && c != nil
}

// SetAuth stores the token and company together after login.
func (s *Session) SetAuth(ctx context.Context, token string, company models.Company) error {
	ttl := s.ttl
	if s.tokenTTL != nil {
		ttl = s.tokenTTL(token)
	}
	if err := s.store.Set(ctx, s.key(keyAuthToken), token, ttl); err != nil {
		return err
	}
	if err := s.saveCompany(ctx, company, ttl); err != nil {
		return err
	}
	s.logger.LogSession("login", s.id, fmt.Sprintf("company %s authenticated (ttl %s)", company.ID, ttl))
	return nil
}

func (s *Session) SaveCompany(ctx context.Context, company models.Company) error {
	return s.saveCompany(ctx, company, s.ttl)
}

func (s *Session) saveCompany(ctx context.Context, company models.Company, ttl time.Duration) error {
	raw, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("failed to marshal company: %w", err)
	}
	return s.store.Set(ctx, s.key(keyCompany), string(raw), ttl)
}

// Clear removes both auth keys and the registration draft.
func (s *Session) Clear(ctx context.Context) error {
	err := s.store.Delete(ctx, s.key(keyAuthToken), s.key(keyCompany), s.key(keyDraft))
	s.logger.LogSession("clear", s.id, "auth and draft removed")
	return err
}

// LoadDraft decodes the stored draft into out. ok is false when there is none.
func (s *Session) LoadDraft(ctx context.Context, out any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, s.key(keyDraft))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode registration draft: %w", err)
	}
	return true, nil
}

func (s *Session) SaveDraft(ctx context.Context, draft any) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal registration draft: %w", err)
	}
	return s.store.Set(ctx, s.key(keyDraft), string(raw), s.ttl)
}

func (s *Session) ClearDraft(ctx context.Context) error {
	return s.store.Delete(ctx, s.key(keyDraft))
}

func (s *Session) SetFlash(ctx context.Context, msg FlashMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.key(keyFlash), string(raw), s.ttl)
}

// Flash returns the pending notice once and removes it.
func (s *Session) Flash(ctx context.Context) *FlashMessage {
	raw, ok, err := s.store.Get(ctx, s.key(keyFlash))
	if err != nil || !ok {
		return nil
	}
	_ = s.store.Delete(ctx, s.key(keyFlash))
	var msg FlashMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil
	}
	return &msg
}
