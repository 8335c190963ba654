package expoapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned for any HTTP 401. Callers must drop the
	// session and send the user to the login page.
	ErrUnauthorized = errors.New("expo api: unauthorized")
	// ErrTransport wraps network failures and undecodable responses.
	ErrTransport = errors.New("expo api: transport failure")
)

// APIError is a response the server rejected, either by status code or by
// success=false in the envelope.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("expo api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("expo api: request rejected (status %d)", e.Status)
}

// FieldErrors flattens the server's per-field validation errors to the first
// message of each field.
func (e *APIError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for field, msgs := range e.Errors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

// Summary joins all field errors in a stable order.
func (e *APIError) Summary() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var parts []string
	for _, f := range fields {
		parts = append(parts, e.Errors[f]...)
	}
	return strings.Join(parts, "; ")
}

// UserMessage picks the text shown to the user: the server message when the
// server rejected the call, the fallback for everything else.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// decodeFieldErrors accepts both {"f": ["msg"]} and {"f": "msg"}.
func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var multi map[string][]string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return multi
	}
	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		out := make(map[string][]string, len(single))
		for k, v := range single {
			out[k] = []string{v}
		}
		return out
	}
	return nil
}
