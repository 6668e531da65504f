package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dshills/profilecards/internal/schema"
	"github.com/dshills/profilecards/internal/schema/validate"
)

// profilesPath is appended to the backend base URL.
const profilesPath = "/profiles"

// HTTPClient lists profiles from a remote backend.
type HTTPClient struct {
	baseURL     string
	checkStatus bool
	httpClient  *http.Client
}

// NewHTTPClient builds a client for the backend at baseURL.
// The URL must be absolute http or https; a trailing slash is dropped.
func NewHTTPClient(baseURL string, opts Options) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: host is required", baseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(u.String(), "/"),
		checkStatus: opts.CheckStatus,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Endpoint returns the URL requested by ListProfiles.
func (c *HTTPClient) Endpoint() string { return c.baseURL + profilesPath }

// ListProfiles issues GET <base>/profiles and decodes the body.
// Unless CheckStatus was set, the status code is ignored: any response whose
// body is a JSON array is a success.
func (c *HTTPClient) ListProfiles(ctx context.Context) ([]schema.Profile, error) {
	endpoint := c.Endpoint()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Source: endpoint, Err: fmt.Errorf("creating HTTP request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Source: endpoint, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Source: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if c.checkStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, &FetchError{Kind: KindStatus, Source: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status, body: %s", truncate(string(body), 200))}
	}

	profiles, err := validate.Parse(body)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, Source: endpoint, Status: resp.StatusCode, Err: err}
	}
	return profiles, nil
}
