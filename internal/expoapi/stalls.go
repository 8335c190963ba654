package expoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"expo-portal/internal/models"
)

func (c *Client) StallLayout(ctx context.Context, token string) (*models.HallLayout, error) {
	env, _, err := c.call(ctx, http.MethodGet, "/stalls/layout", token, nil)
	if err != nil {
		return nil, err
	}
	var layout models.HallLayout
	if err := decodeData(env, "/stalls/layout", &layout); err != nil {
		return nil, err
	}
	if layout.Halls == nil {
		layout.Halls = map[string][]models.Stall{}
	}
	return &layout, nil
}

// CompanyStalls lists the stalls owned by the logged-in company.
func (c *Client) CompanyStalls(ctx context.Context, token string) ([]models.Stall, error) {
	env, _, err := c.call(ctx, http.MethodGet, "/stalls/company", token, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []models.Stall{}, nil
	}
	var stalls []models.Stall
	if err := decodeData(env, "/stalls/company", &stalls); err != nil {
		return nil, err
	}
	return stalls, nil
}

// StallDetails is never cached: every selection hits the API.
func (c *Client) StallDetails(ctx context.Context, token, stallNumber string) (*models.StallDetails, error) {
	path := "/stalls/" + url.PathEscape(stallNumber)
	env, _, err := c.call(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	var details models.StallDetails
	if err := decodeData(env, path, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) AllocateStall(ctx context.Context, token string, req models.AllocateRequest) error {
	_, _, err := c.call(ctx, http.MethodPost, "/stalls/allocate", token, req)
	return err
}

func (c *Client) PaymentSchedule(ctx context.Context, token string) (*models.PaymentSchedule, error) {
	env, _, err := c.call(ctx, http.MethodGet, "/payments/schedule", token, nil)
	if err != nil {
		return nil, err
	}

	var schedule models.PaymentSchedule
	var list []models.PaymentInstalment
	if err := json.Unmarshal(env.Data, &list); err == nil {
		schedule.Instalments = list
		return &schedule, nil
	}
	if err := decodeData(env, "/payments/schedule", &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (c *Client) ProcessPayment(ctx context.Context, token string, req models.PaymentRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("payment amount must be positive, got %.2f", req.Amount)
	}
	_, _, err := c.call(ctx, http.MethodPost, "/payments/process", token, req)
	return err
}
