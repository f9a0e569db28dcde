package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pixelbridge-systems/pixelbridge/internal/models"
)

// RemoteRepository stores clients through the bot platform's own
// client API instead of a local database. Every call is one HTTP
// round trip; the lookaside cache is what makes this variant viable.
type RemoteRepository struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteRepository(baseURL, apiKey string, timeout time.Duration) *RemoteRepository {
	return &RemoteRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// remoteClient is the platform's wire shape for a client record.
type remoteClient struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Status        string `json:"status,omitempty"`
	UTMSource     string `json:"utm_source,omitempty"`
	UTMCampaign   string `json:"utm_campaign,omitempty"`
	FBPixelID     string `json:"utm_fb_pixel,omitempty"`
	FBAccessToken string `json:"utm_fb_token,omitempty"`
	IPAddress     string `json:"ip,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	ClickID       string `json:"fbclid,omitempty"`
	LastActivity  int64  `json:"last_activity,omitempty"` // unix millis
}

func (rc *remoteClient) toModel() *models.Client {
	return &models.Client{
		ID:            rc.ID,
		Name:          rc.Name,
		Status:        rc.Status,
		UTMSource:     rc.UTMSource,
		UTMCampaign:   rc.UTMCampaign,
		FBPixelID:     rc.FBPixelID,
		FBAccessToken: rc.FBAccessToken,
		IPAddress:     rc.IPAddress,
		UserAgent:     rc.UserAgent,
		ClickID:       rc.ClickID,
		LastActivity:  time.UnixMilli(rc.LastActivity),
	}
}

func (r *RemoteRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	var result struct {
		Client *remoteClient `json:"client"`
	}

	err := r.post(ctx, "/get_client", map[string]any{
		"id":      id,
		"api_key": r.apiKey,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Client == nil {
		return nil, ErrClientNotFound
	}

	return result.Client.toModel(), nil
}

func (r *RemoteRepository) Merge(ctx context.Context, id string, update models.ClientUpdate) error {
	return r.post(ctx, "/update_client", map[string]any{
		"api_key":     r.apiKey,
		"client_id":   id,
		"update_data": update.Fields(),
	}, nil)
}

func (r *RemoteRepository) List(ctx context.Context) ([]*models.Client, error) {
	var result struct {
		Clients []*remoteClient `json:"clients"`
	}

	err := r.post(ctx, "/clients", map[string]any{
		"api_key": r.apiKey,
	}, &result)
	if err != nil {
		return nil, err
	}

	clients := make([]*models.Client, 0, len(result.Clients))
	for _, rc := range result.Clients {
		clients = append(clients, rc.toModel())
	}

	return clients, nil
}

func (r *RemoteRepository) Close() error {
	return nil
}

func (r *RemoteRepository) post(ctx context.Context, path string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call client API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrClientNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("client API returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
