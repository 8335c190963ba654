package expoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expo-portal/internal/logger"
)

const maxResponseBytes = 4 << 20

// Envelope is the common response shape of the expo API.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// Client talks to the remote expo API. It holds no session state; callers
// pass the bearer token per call.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func NewClient(baseURL string, client *http.Client, log *logger.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// call sends a JSON request and decodes the envelope. The raw body is
// returned as well so endpoints can pick up fields outside "data".
func (c *Client) call(ctx context.Context, method, path, token string, payload any) (*Envelope, []byte, error) {
	raw, status, err := c.send(ctx, method, path, token, payload)
	if err != nil {
		return nil, nil, err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= 400 {
			return nil, raw, &APIError{Status: status}
		}
		c.logger.Error("UPSTREAM", fmt.Sprintf("Failed to decode %s %s response: %v", method, path, err))
		return nil, raw, fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
	}

	if status >= 400 || !env.Success {
		apiErr := &APIError{Status: status, Message: env.Message, Errors: decodeFieldErrors(env.Errors)}
		c.logger.Warn("UPSTREAM", fmt.Sprintf("%s %s rejected: %s", method, path, apiErr.Error()))
		return &env, raw, apiErr
	}

	return &env, raw, nil
}

// send performs the HTTP exchange. A 401 becomes ErrUnauthorized regardless
// of the body.
func (c *Client) send(ctx context.Context, method, path, token string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("UPSTREAM", fmt.Sprintf("%s %s failed: %v", method, path, err))
		return nil, 0, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("UPSTREAM", fmt.Sprintf("Failed to close response body: %v", err))
		}
	}(resp.Body)

	c.logger.LogUpstream(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.LogSecurity("UNAUTHORIZED", fmt.Sprintf("%s %s returned 401", method, path))
		return nil, resp.StatusCode, ErrUnauthorized
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	return raw, resp.StatusCode, nil
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(env *Envelope, path string, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: %s returned no data", ErrTransport, path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", ErrTransport, path, err)
	}
	return nil
}
