package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agendly/agendly-backend/internal/config"
)

// Sender dispatches one text message through a tenant's messaging channel.
type Sender interface {
	Configured() bool
	SendText(ctx context.Context, instanceID, token, phone, message string) error
}

// Client talks to the WhatsApp relay. The relay only reports an HTTP status;
// delivery beyond that is fire-and-forget.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.RelayBaseURL, "/"),
		APIKey:  cfg.RelayAPIKey,
		HTTPClient: &http.Client{
			Timeout: cfg.RelayTimeout,
		},
	}
}

func (c *Client) Configured() bool {
	return c.BaseURL != ""
}

func (c *Client) SendText(ctx context.Context, instanceID, token, phone, message string) error {
	if !c.Configured() {
		return errors.New("relay is not configured")
	}

	payload := map[string]string{
		"number": phone,
		"text":   message,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/message/sendText/%s", c.BaseURL, instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("apikey", token)
	} else if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay dispatch failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
