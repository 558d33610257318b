// Package cloudflare implements the registrar driver for domains whose
// registration lives at Cloudflare, against the Registrar API's
// domain nameserver endpoints (not the DNS-records API the teacher
// provider used).
package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gitlab.bluewillows.net/root/failoverctl/pkg/httputil"
	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

// DefaultAPIEndpoint is the base URL for Cloudflare API v4.
const DefaultAPIEndpoint = "https://api.cloudflare.com/client/v4"

// apiError represents an error from the Cloudflare API.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// apiResponse is the standard Cloudflare API response wrapper.
type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

// registrarDomain is the Result shape of the registrar domain endpoints.
type registrarDomain struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	NameServers  []string `json:"name_servers"`
	SupportedTLD bool     `json:"supported_tld"`
}

// Client is a Cloudflare Registrar API client scoped to one account.
type Client struct {
	apiEndpoint string
	accountID   string
	token       string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIEndpoint overrides the API base URL, used in tests.
func WithAPIEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.apiEndpoint = endpoint }
}

// NewClient creates a Cloudflare Registrar API client for accountID,
// authenticating with token.
func NewClient(token, accountID string, opts ...ClientOption) *Client {
	c := &Client{
		apiEndpoint: DefaultAPIEndpoint,
		accountID:   accountID,
		token:       token,
		httpClient:  httputil.NewClient(&httputil.ClientConfig{UserAgent: "failoverctl/1.0"}),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*apiResponse, error) {
	reqURL := c.apiEndpoint + path

	c.logger.Debug("cloudflare registrar API request",
		slog.String("method", method),
		slog.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, registrar.ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, registrar.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiResp apiResponse
		if err := json.Unmarshal(respBody, &apiResp); err == nil && len(apiResp.Errors) > 0 {
			return nil, fmt.Errorf("API error: %s (code: %d)", apiResp.Errors[0].Message, apiResp.Errors[0].Code)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	if !apiResp.Success {
		if len(apiResp.Errors) > 0 {
			return nil, fmt.Errorf("API error: %s (code: %d)", apiResp.Errors[0].Message, apiResp.Errors[0].Code)
		}
		return nil, fmt.Errorf("API request failed with unknown error")
	}

	return &apiResp, nil
}

// GetDomain fetches the registrar's view of domain, including its
// currently configured nameserver set.
func (c *Client) GetDomain(ctx context.Context, domain string) (*registrarDomain, error) {
	path := fmt.Sprintf("/accounts/%s/registrar/domains/%s", c.accountID, domain)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var d registrarDomain
	if err := json.Unmarshal(resp.Result, &d); err != nil {
		return nil, fmt.Errorf("parsing domain response: %w", err)
	}
	return &d, nil
}

// UpdateNameServers replaces domain's registered nameserver set.
func (c *Client) UpdateNameServers(ctx context.Context, domain string, nameServers []string) error {
	body, err := json.Marshal(map[string][]string{"name_servers": nameServers})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	path := fmt.Sprintf("/accounts/%s/registrar/domains/%s", c.accountID, domain)
	if _, err := c.doRequest(ctx, http.MethodPatch, path, strings.NewReader(string(body))); err != nil {
		return fmt.Errorf("updating name servers: %w", err)
	}

	c.logger.Info("updated registrar nameservers",
		slog.String("domain", domain),
		slog.Any("name_servers", nameServers),
	)
	return nil
}
