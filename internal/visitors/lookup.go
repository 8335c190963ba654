// Package visitors registers visitors and renders their entry card and QR.
package visitors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"
)

var ErrNotFound = errors.New("visitor not found")

// Fetcher returns the raw body of a GET on the expo API.
type Fetcher interface {
	GetRaw(ctx context.Context, path string) ([]byte, error)
}

type Outcome string

const (
	Found    Outcome = "found"
	NotFound Outcome = "not_found"
)

// Response shapes a lookup body may take, in the order they are tried.
const (
	ShapeData    = "data"
	ShapeVisitor = "visitor"
	ShapeRaw     = "raw"
)

// Attempt records what happened at one candidate endpoint.
type Attempt struct {
	Path  string
	Shape string
	Err   string
}

// LookupResult is either Found with a Visitor, or NotFound with the
// attempts and hints that explain why.
type LookupResult struct {
	Outcome  Outcome
	Visitor  *models.Visitor
	Source   string
	Attempts []Attempt
	Hints    []string
	// AuthErr is set when the API answered 401; the lookup stops there.
	AuthErr error
}

func (r LookupResult) Found() bool { return r.Outcome == Found }

// Err is ErrNotFound for a NotFound result.
func (r LookupResult) Err() error {
	if r.Found() {
		return nil
	}
	return ErrNotFound
}

var notFoundHints = []string{
	"Make sure backend server is running",
	"Check network connection",
	"Verify visitor ID is correct",
}

// CandidatePaths lists the endpoints a visitor may be read from, in order.
func CandidatePaths(id string) []string {
	escaped := url.PathEscape(id)
	return []string{
		"/visitors/" + escaped + "/view",
		"/visitors/" + escaped,
	}
}

// Resolver looks visitors up across the candidate endpoints.
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *logger.Logger
}

func NewResolver(fetcher Fetcher, timeout time.Duration, log *logger.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{fetcher: fetcher, timeout: timeout, logger: log}
}

// Lookup tries each candidate endpoint once, each under its own timeout.
// The first body that yields a visitor with an id wins.
func (r *Resolver) Lookup(ctx context.Context, id string) LookupResult {
	result := LookupResult{Outcome: NotFound}
	id = strings.TrimSpace(id)
	if id == "" {
		result.Hints = append(result.Hints, "Verify visitor ID is correct")
		return result
	}

	for _, path := range CandidatePaths(id) {
		attempt := Attempt{Path: path}

		reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
		raw, err := r.fetcher.GetRaw(reqCtx, path)
		cancel()

		if err != nil {
			attempt.Err = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			r.logger.LogVisitor("lookup_miss", id, fmt.Sprintf("%s: %v", path, err))
			if expoapi.IsUnauthorized(err) {
				result.AuthErr = err
				return result
			}
			continue
		}

		visitor, shape, err := DecodeVisitor(raw)
		attempt.Shape = shape
		if err != nil {
			attempt.Err = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			r.logger.LogVisitor("lookup_miss", id, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		result.Attempts = append(result.Attempts, attempt)
		result.Outcome = Found
		result.Visitor = visitor
		result.Source = path + "#" + shape
		r.logger.LogVisitor("lookup", id, "found via "+result.Source)
		return result
	}

	result.Hints = append(result.Hints, notFoundHints...)
	return result
}

// DecodeVisitor reads a visitor out of a lookup body, trying the data
// envelope, then a visitor object, then the body itself. A body with
// success=false yields no visitor.
func DecodeVisitor(raw []byte) (*models.Visitor, string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, "", errors.New("response is not a JSON object")
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Visitor json.RawMessage `json:"visitor"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, "", fmt.Errorf("undecodable response: %w", err)
	}
	if envelope.Success != nil && !*envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "server reported failure"
		}
		return nil, "", errors.New(msg)
	}

	candidates := []struct {
		shape string
		body  json.RawMessage
	}{
		{ShapeData, envelope.Data},
		{ShapeVisitor, envelope.Visitor},
		{ShapeRaw, json.RawMessage(raw)},
	}
	for _, c := range candidates {
		if v, ok := visitorFrom(c.body); ok {
			return v, c.shape, nil
		}
	}
	return nil, "", errors.New("no visitor in response")
}

func visitorFrom(body json.RawMessage) (*models.Visitor, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var v models.Visitor
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	if strings.TrimSpace(v.ID.String()) == "" {
		return nil, false
	}
	return &v, true
}
