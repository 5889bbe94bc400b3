package konnect

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// authEndpoint is the developer login path on a portal's API.
const authEndpoint = "/api/v2/developer/authenticate"

// Authenticate logs a developer in against a portal and caches the session
// cookie for subsequent portal-scoped calls. Explicit credentials take
// precedence over the configured defaults.
//
// The call bypasses Request because its defining side effect is the
// Set-Cookie response header, not a JSON body: redirects are disabled and
// any status below 400 counts as acceptance. When the response carries no
// recognizable session cookie the login still reports success but nothing
// is cached; later private-resource calls will fail with authorization
// errors, which is the only way that state is observable.
func (c *Client) Authenticate(ctx context.Context, portalID, username, password string) (*AuthResult, error) {
	if username == "" {
		username = c.developerUsername
	}
	if password == "" {
		password = c.developerPassword
	}
	if username == "" || password == "" {
		return nil, &ConfigError{
			Reason: "developer credentials are required: pass username and password or set KONNECT_DEVELOPER_USERNAME and KONNECT_DEVELOPER_PASSWORD",
		}
	}

	base, err := c.ResolvePortalURL(ctx, portalID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, &RequestError{Endpoint: authEndpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+authEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Endpoint: authEndpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.authClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: authEndpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Endpoint:   authEndpoint,
			Message:    "authentication rejected; check the developer credentials",
		}
	}

	result := &AuthResult{PortalID: portalID}
	if token, ok := extractSessionToken(resp.Header.Values("Set-Cookie")); ok {
		c.setSession(portalID, sessionCookieName+"="+token)
		result.SessionCached = true
	} else {
		c.logger.Warn("login accepted but no session cookie found in response", map[string]interface{}{
			"portal_id": portalID,
		})
	}

	return result, nil
}

// extractSessionToken scans Set-Cookie values for the portal session cookie
// and returns its value.
func extractSessionToken(setCookies []string) (string, bool) {
	for _, raw := range setCookies {
		for _, part := range strings.Split(raw, ";") {
			part = strings.TrimSpace(part)
			if value, ok := strings.CutPrefix(part, sessionCookieName+"="); ok && value != "" {
				return value, true
			}
		}
	}
	return "", false
}
