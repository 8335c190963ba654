package expoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"expo-portal/internal/models"
)

// RegisterStep1 creates the company and returns its id.
func (c *Client) RegisterStep1(ctx context.Context, payload any) (string, error) {
	_, raw, err := c.call(ctx, http.MethodPost, "/register/step1", "", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		CompanyID models.FlexString `json:"company_id"`
		Data      struct {
			CompanyID models.FlexString `json:"company_id"`
			ID        models.FlexString `json:"id"`
		} `json:"data"`
	}
	// data may be absent or not an object; only company_id matters.
	_ = json.Unmarshal(raw, &resp)

	switch {
	case resp.CompanyID != "":
		return resp.CompanyID.String(), nil
	case resp.Data.CompanyID != "":
		return resp.Data.CompanyID.String(), nil
	case resp.Data.ID != "":
		return resp.Data.ID.String(), nil
	}
	return "", fmt.Errorf("%w: /register/step1 returned no company_id", ErrTransport)
}

func (c *Client) RegisterStep2(ctx context.Context, companyID string, payload any) error {
	_, _, err := c.call(ctx, http.MethodPost, "/register/step2/"+url.PathEscape(companyID), "", payload)
	return err
}

func (c *Client) RegisterStep3(ctx context.Context, companyID string, payload any) error {
	_, _, err := c.call(ctx, http.MethodPost, "/register/step3/"+url.PathEscape(companyID), "", payload)
	return err
}

// Login accepts the token and company either at the top level or inside data.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	_, raw, err := c.call(ctx, http.MethodPost, "/login", "", req)
	if err != nil {
		return nil, err
	}

	type tokenFields struct {
		Token       string          `json:"token"`
		AccessToken string          `json:"access_token"`
		Company     *models.Company `json:"company"`
	}
	var resp struct {
		tokenFields
		Data *tokenFields `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode /login: %v", ErrTransport, err)
	}

	candidates := []*tokenFields{&resp.tokenFields}
	if resp.Data != nil {
		candidates = append(candidates, resp.Data)
	}

	result := &models.LoginResult{}
	haveCompany := false
	for _, tf := range candidates {
		if result.Token == "" {
			if tf.Token != "" {
				result.Token = tf.Token
			} else {
				result.Token = tf.AccessToken
			}
		}
		if tf.Company != nil && !haveCompany {
			result.Company = *tf.Company
			haveCompany = true
		}
	}

	if result.Token == "" {
		return nil, fmt.Errorf("%w: /login returned no token", ErrTransport)
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, _, err := c.call(ctx, http.MethodPost, "/logout", token, nil)
	return err
}

func (c *Client) Dashboard(ctx context.Context, token string) (*models.DashboardData, error) {
	env, _, err := c.call(ctx, http.MethodGet, "/dashboard", token, nil)
	if err != nil {
		return nil, err
	}
	var data models.DashboardData
	if err := decodeData(env, "/dashboard", &data); err != nil {
		return nil, err
	}
	return &data, nil
}
