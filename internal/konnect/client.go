// Package konnect implements the upstream client for the Kong Konnect
// admin API and the per-portal developer portal APIs. One Client owns the
// admin credentials plus two process-lifetime caches: resolved portal base
// URLs and developer session cookies, both keyed by portal id.
package konnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
)

// adminRegions lists the geographic regions the admin API is served from.
var adminRegions = map[string]bool{
	"us": true,
	"eu": true,
	"au": true,
	"me": true,
	"in": true,
}

// sessionCookieName is the cookie carrying a developer's portal session.
const sessionCookieName = "portalaccesstoken"

// Config holds configuration for the Konnect client
type Config struct {
	AccessToken       string        `mapstructure:"access_token"`
	Region            string        `mapstructure:"region"`
	DeveloperUsername string        `mapstructure:"developer_username"`
	DeveloperPassword string        `mapstructure:"developer_password"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`

	// BaseURL overrides the region-derived admin base URL. Used by tests
	// and by deployments that front the admin API with a proxy.
	BaseURL string `mapstructure:"base_url"`
}

// Client issues authenticated requests against the Konnect admin API and
// resolved portal APIs. It is safe for concurrent use.
type Client struct {
	baseURL           string
	accessToken       string
	developerUsername string
	developerPassword string

	httpClient *http.Client
	// authClient never follows redirects: the login endpoint answers with a
	// redirect whose Set-Cookie header is the whole point of the call.
	authClient *http.Client

	logger observability.Logger

	mu         sync.Mutex
	portalURLs map[string]string
	sessions   map[string]string
}

// RequestOptions describes a single upstream call.
type RequestOptions struct {
	Endpoint string
	Method   string
	Body     interface{}

	// UsePortalContext targets the resolved portal API for PortalID instead
	// of the admin API.
	UsePortalContext bool
	PortalID         string

	// SessionToken, when set, takes precedence over any cached session for
	// this call only.
	SessionToken string
}

// NewClient creates a new Konnect client
func NewClient(cfg Config, logger observability.Logger) (*Client, error) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if !adminRegions[cfg.Region] {
			return nil, &ConfigError{Reason: fmt.Sprintf("unknown Konnect region %q", cfg.Region)}
		}
		baseURL = fmt.Sprintf("https://%s.api.konghq.com/v2", cfg.Region)
	}

	if cfg.AccessToken == "" {
		logger.Warn("no Konnect access token configured; admin API calls will be rejected upstream", nil)
	}

	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		accessToken:       cfg.AccessToken,
		developerUsername: cfg.DeveloperUsername,
		developerPassword: cfg.DeveloperPassword,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		authClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:     logger,
		portalURLs: make(map[string]string),
		sessions:   make(map[string]string),
	}, nil
}

// Request performs one upstream call and returns the raw JSON body. A 204
// response yields a synthetic {"success": true} object since some endpoints
// (notably login) answer with headers only.
func (c *Client) Request(ctx context.Context, opts RequestOptions) (json.RawMessage, error) {
	target, err := c.targetURL(ctx, opts)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, &RequestError{Endpoint: opts.Endpoint, Err: err}
		}
		bodyReader = bytes.NewReader(payload)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, &RequestError{Endpoint: opts.Endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if opts.UsePortalContext {
		if cookie := c.sessionCookie(opts); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	} else if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: opts.Endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return json.RawMessage(`{"success":true}`), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: opts.Endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Endpoint:   opts.Endpoint,
			Message:    upstreamMessage(body),
		}
	}

	return json.RawMessage(body), nil
}

// targetURL computes the absolute URL for a call, resolving the portal base
// URL first when the call is portal-scoped.
func (c *Client) targetURL(ctx context.Context, opts RequestOptions) (string, error) {
	if !opts.UsePortalContext {
		return c.adminURL(opts.Endpoint), nil
	}

	if opts.PortalID == "" {
		return "", &ConfigError{Reason: "a portal id is required for portal API calls"}
	}
	base, err := c.ResolvePortalURL(ctx, opts.PortalID)
	if err != nil {
		return "", err
	}
	return base + opts.Endpoint, nil
}

// adminURL joins an endpoint with the admin base URL. Endpoints in the v3
// family are addressed by stripping the legacy /v2 suffix from the base.
func (c *Client) adminURL(endpoint string) string {
	base := c.baseURL
	if strings.HasPrefix(endpoint, "/v3/") {
		base = strings.TrimSuffix(base, "/v2")
	}
	return base + endpoint
}

// sessionCookie picks the cookie for a portal-scoped call: an explicit
// token wins, then a cached session, then nothing (public resources stay
// reachable without one).
func (c *Client) sessionCookie(opts RequestOptions) string {
	if opts.SessionToken != "" {
		return sessionCookieName + "=" + opts.SessionToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[opts.PortalID]
}

// ResolvePortalURL returns the public base URL for a portal, resolving it
// through the admin portal listing on first use and caching the result for
// the life of the process.
func (c *Client) ResolvePortalURL(ctx context.Context, portalID string) (string, error) {
	c.mu.Lock()
	if cached, ok := c.portalURLs[portalID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	raw, err := c.Request(ctx, RequestOptions{Endpoint: "/portals", Method: http.MethodGet})
	if err != nil {
		return "", err
	}

	var portals PortalList
	if err := Decode("/portals", raw, &portals); err != nil {
		return "", err
	}

	for _, portal := range portals.Data {
		if portal.ID == portalID {
			resolved := "https://" + portal.CanonicalDomain
			c.mu.Lock()
			c.portalURLs[portalID] = resolved
			c.mu.Unlock()
			return resolved, nil
		}
	}

	return "", &NotFoundError{Resource: "portal", ID: portalID}
}

// SetPortalURL pre-populates the resolved base URL for a portal, bypassing
// resolution through the admin listing. Tests use this to point a portal at
// a local server.
func (c *Client) SetPortalURL(portalID, baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.portalURLs[portalID] = strings.TrimRight(baseURL, "/")
}

func (c *Client) setSession(portalID, cookie string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[portalID] = cookie
}

// Session returns the cached session cookie for a portal, if any.
func (c *Client) Session(portalID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cookie, ok := c.sessions[portalID]
	return cookie, ok
}
