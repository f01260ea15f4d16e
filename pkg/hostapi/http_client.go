package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/teams"
	"github.com/goliatone/go-dataview/components/webhooks"
)

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the host backend behind the team and webhook screens.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for the host REST API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("hostapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// AddMember implements teams.Backend.
func (c *HTTPClient) AddMember(ctx context.Context, member teams.Member) error {
	req := memberRequest{ID: member.ID, Name: member.Name, Email: member.Email, Role: member.Role}
	return c.do(ctx, http.MethodPost, "/teams/"+url.PathEscape(member.TeamID)+"/members", req, nil)
}

// UpdateRole implements teams.Backend.
func (c *HTTPClient) UpdateRole(ctx context.Context, memberID, role string) error {
	return c.do(ctx, http.MethodPatch, "/members/"+url.PathEscape(memberID)+"/role", roleChange{Role: role}, nil)
}

// AddRole implements teams.Backend.
func (c *HTTPClient) AddRole(ctx context.Context, role teams.Role) error {
	req := roleRequest{Name: role.Name, Description: role.Description, Permissions: role.Permissions}
	return c.do(ctx, http.MethodPost, "/roles", req, nil)
}

// RemoveMembers implements teams.Backend.
func (c *HTTPClient) RemoveMembers(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/members/remove", idsRequest{IDs: ids}, nil)
}

// CreateWebhook implements webhooks.Backend. The secret is sent once and
// never read back.
func (c *HTTPClient) CreateWebhook(ctx context.Context, hook webhooks.Webhook) error {
	req := webhookRequest{
		ID:       hook.ID,
		Name:     hook.Name,
		URL:      hook.URL,
		HookName: hook.HookName,
		Events:   hook.Events,
		Secret:   hook.Secret,
	}
	if strings.TrimSpace(hook.Schema) != "" {
		req.Schema = json.RawMessage(hook.Schema)
	}
	return c.do(ctx, http.MethodPost, "/webhooks", req, nil)
}

// DeleteWebhooks implements webhooks.Backend.
func (c *HTTPClient) DeleteWebhooks(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/webhooks/delete", idsRequest{IDs: ids}, nil)
}

// SetWebhookStatus implements webhooks.Backend.
func (c *HTTPClient) SetWebhookStatus(ctx context.Context, id string, status webhooks.Status) error {
	return c.do(ctx, http.MethodPatch, "/webhooks/"+url.PathEscape(id), statusChange{Status: string(status)}, nil)
}

// FetchDataset implements DatasetClient.
func (c *HTTPClient) FetchDataset(ctx context.Context, name string) ([]dataset.Record, error) {
	var resp datasetResponse
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRecords(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("hostapi: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("hostapi: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hostapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return newAPIError(resp.StatusCode, buf.Bytes())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("hostapi: decode response: %w", err)
	}
	return nil
}

type memberRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type roleChange struct {
	Role string `json:"role"`
}

type roleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type webhookRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	URL      string          `json:"url,omitempty"`
	HookName string          `json:"hook_name"`
	Events   []string        `json:"events"`
	Schema   json.RawMessage `json:"schema"`
	Secret   string          `json:"secret"`
}

type statusChange struct {
	Status string `json:"status"`
}

type datasetResponse struct {
	Records []map[string]any `json:"records"`
}

func (r datasetResponse) toRecords() []dataset.Record {
	out := make([]dataset.Record, len(r.Records))
	for i, rec := range r.Records {
		out[i] = dataset.Record(rec)
	}
	return out
}
