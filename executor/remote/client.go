package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamweaver/weaver/registry"
)

// DefaultEndpoint is the remote-execution path when none is configured
// (spec.md §4.2.1).
const DefaultEndpoint = "/weaver/execute"

// Client implements executor.RemoteCaller over HTTP: it serializes the
// dependency chain rooted at the target and POSTs it to Endpoint.
type Client struct {
	BaseURL    string
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient creates a Client against baseURL (e.g. "http://localhost:3000"),
// using DefaultEndpoint and http.DefaultClient unless overridden.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, Endpoint: DefaultEndpoint, HTTPClient: http.DefaultClient}
}

type execResponse struct {
	Value any    `json:"value"`
	Error string `json:"error,omitempty"`
}

// Call implements executor.RemoteCaller.
func (c *Client) Call(ctx context.Context, reg *registry.Registry, targetId string) (any, error) {
	chain, err := BuildChain(reg, targetId)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(chain)
	if err != nil {
		return nil, fmt.Errorf("remote: encoding chain: %w", err)
	}

	url := c.BaseURL + c.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Weaver-Call-Id", uuid.NewString())

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	var out execResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("remote: decoding response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("remote: %s", out.Error)
	}
	return out.Value, nil
}
