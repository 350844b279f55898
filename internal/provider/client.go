package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agendly/agendly-backend/internal/config"
)

// ErrNotFound means the provider does not know the referenced object. Callers
// use it both for trial-fetch probes and idempotent cancel-of-cancelled.
var ErrNotFound = errors.New("provider: resource not found")

// API is the subset of the payment provider consumed by this core.
type API interface {
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	GetPayment(ctx context.Context, accessToken, id string) (*Payment, error)
	GetPreapproval(ctx context.Context, accessToken, id string) (*Preapproval, error)
	GetAuthorizedPayment(ctx context.Context, accessToken, id string) (*AuthorizedPayment, error)
	CreatePreference(ctx context.Context, accessToken string, req *PreferenceRequest) (*Preference, error)
	CreatePreapproval(ctx context.Context, accessToken string, req *PreapprovalRequest) (*Preapproval, error)
	UpdatePreapproval(ctx context.Context, accessToken, id string, status string) (*Preapproval, error)
}

// Client talks to the Mercado Pago REST API.
type Client struct {
	BaseURL    string
	AppID      string
	Secret     string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.ProviderBaseURL, "/"),
		AppID:   cfg.ProviderAppID,
		Secret:  cfg.ProviderSecret,
		HTTPClient: &http.Client{
			Timeout: cfg.ProviderTimeout,
		},
	}
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.New("refresh token is required")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.AppID)
	form.Set("client_secret", c.Secret)
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token refresh failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("token refresh returned empty access_token")
	}
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, accessToken, id string) (*Payment, error) {
	var out struct {
		Payment
		ID json.Number `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), accessToken, nil, &out); err != nil {
		return nil, err
	}
	p := out.Payment
	p.ID = out.ID.String()
	return &p, nil
}

func (c *Client) GetPreapproval(ctx context.Context, accessToken, id string) (*Preapproval, error) {
	var out Preapproval
	if err := c.doJSON(ctx, http.MethodGet, "/preapproval/"+url.PathEscape(id), accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAuthorizedPayment(ctx context.Context, accessToken, id string) (*AuthorizedPayment, error) {
	var out struct {
		AuthorizedPayment
		ID json.Number `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/authorized_payments/"+url.PathEscape(id), accessToken, nil, &out); err != nil {
		return nil, err
	}
	ap := out.AuthorizedPayment
	ap.ID = out.ID.String()
	return &ap, nil
}

func (c *Client) CreatePreference(ctx context.Context, accessToken string, req *PreferenceRequest) (*Preference, error) {
	payload := map[string]interface{}{
		"external_reference": req.ExternalReference,
		"items": []map[string]interface{}{{
			"title":       req.Title,
			"quantity":    1,
			"unit_price":  centsToUnits(req.AmountCents),
			"currency_id": req.Currency,
		}},
		"metadata": map[string]interface{}{
			"internal_payment_id": req.InternalPaymentID,
		},
		"expires":            true,
		"expiration_date_to": req.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if req.MarketplaceFeeCents > 0 {
		payload["marketplace_fee"] = centsToUnits(req.MarketplaceFeeCents)
	}

	var out Preference
	if err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePreapproval(ctx context.Context, accessToken string, req *PreapprovalRequest) (*Preapproval, error) {
	payload := map[string]interface{}{
		"external_reference": req.ExternalReference,
		"reason":             req.Reason,
		"payer_email":        req.PayerEmail,
		"auto_recurring": map[string]interface{}{
			"frequency":          req.FrequencyMonths,
			"frequency_type":     "months",
			"transaction_amount": centsToUnits(req.AmountCents),
			"currency_id":        req.Currency,
		},
	}

	var out Preapproval
	if err := c.doJSON(ctx, http.MethodPost, "/preapproval", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePreapproval(ctx context.Context, accessToken, id string, status string) (*Preapproval, error) {
	payload := map[string]interface{}{"status": status}
	var out Preapproval
	if err := c.doJSON(ctx, http.MethodPut, "/preapproval/"+url.PathEscape(id), accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, accessToken string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider request failed: %s %s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
