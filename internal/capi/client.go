// Package capi is a minimal client for the Facebook Conversions API
// server-side events endpoint.
package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://graph.facebook.com"

// Destination identifies where a conversion event goes: the ad pixel
// and the access token authorized to write to it.
type Destination struct {
	PixelID     string
	AccessToken string
}

// Event is one server-side conversion event.
type Event struct {
	EventName  string      `json:"event_name"`
	EventTime  int64       `json:"event_time"`
	UserData   UserData    `json:"user_data"`
	CustomData *CustomData `json:"custom_data,omitempty"`
}

// UserData carries the user-identifying fields the API matches on.
// FBC must be omitted entirely when there is no click id; the API
// treats an explicit null as a present field.
type UserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	FBC             string `json:"fbc,omitempty"`
}

// CustomData carries event parameters for value optimization.
type CustomData struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// BuildFBC formats a click id as the versioned fbc composite:
// "fb.1.<creation time millis>.<click id>".
func BuildFBC(now time.Time, clickID string) string {
	return fmt.Sprintf("fb.1.%d.%s", now.UnixMilli(), clickID)
}

// Client posts events to the per-pixel events endpoint.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewClient(baseURL, apiVersion string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send delivers one event. The access token rides in the request body
// alongside the event data. A non-2xx response is an error; retrying
// is the caller's business (in practice: nobody's, delivery is
// best-effort).
func (c *Client) Send(ctx context.Context, dest Destination, event Event) error {
	payload := map[string]any{
		"data":         []Event{event},
		"access_token": dest.AccessToken,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/events", c.baseURL, c.apiVersion, dest.PixelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("events endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
