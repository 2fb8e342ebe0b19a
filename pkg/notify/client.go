package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client pushes dashboard notifications to the notification gateway, which
// fans them out over its own socket channel.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Notification is one message for one user.
type Notification struct {
	UserID  uint                   `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		NotificationID string `json:"notification_id"`
		Delivered      bool   `json:"delivered"`
	} `json:"data"`
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send delivers a notification. A gateway answering with success=false is
// reported as an error.
func (c *Client) Send(ctx context.Context, n Notification) (*SendResponse, error) {
	jsonData, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/notifications", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("notification gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var response SendResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return &response, fmt.Errorf("notification rejected: %s", response.Message)
	}

	return &response, nil
}

// Notify sends a notification and discards the gateway response.
func (c *Client) Notify(ctx context.Context, n Notification) error {
	_, err := c.Send(ctx, n)
	return err
}
