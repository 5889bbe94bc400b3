package konnect

import "encoding/json"

// Narrow response structs: each endpoint decodes only the fields the gateway
// actually uses, validated where a field is load-bearing.

// Portal is a developer portal as returned by the admin portal listing.
type Portal struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CanonicalDomain string `json:"canonical_domain"`
	IsPublic        bool   `json:"is_public"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// PortalList is the admin "list portals" response.
type PortalList struct {
	Data []Portal  `json:"data"`
	Meta *ListMeta `json:"meta"`
}

// API is a catalog entry in a portal's API listing.
type API struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Published   bool   `json:"published"`
	Deprecated  bool   `json:"deprecated"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// APIList is a portal API catalog response.
type APIList struct {
	Data []API     `json:"data"`
	Meta *ListMeta `json:"meta"`
}

// Specification is one specification document attached to an API.
type Specification struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SpecificationList is the specification discovery response.
type SpecificationList struct {
	Data []Specification `json:"data"`
}

// Application is a developer-owned application registered in a portal.
type Application struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ApplicationList is a portal application listing response.
type ApplicationList struct {
	Data []Application `json:"data"`
	Meta *ListMeta     `json:"meta"`
}

// Subscription links an application to an API.
type Subscription struct {
	ID            string `json:"id"`
	APIID         string `json:"api_id"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// SubscriptionList is a portal subscription listing response.
type SubscriptionList struct {
	Data []Subscription `json:"data"`
	Meta *ListMeta      `json:"meta"`
}

// Credential is an API key created for an application. The Secret is
// disclosed exactly once, in the creation response.
type Credential struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Secret      string `json:"credential"`
	ExpiresAt   string `json:"expires_at"`
	CreatedAt   string `json:"created_at"`
}

// ListMeta carries pagination metadata on list responses.
type ListMeta struct {
	PageCount  int `json:"page_count"`
	TotalCount int `json:"total_count"`
}

// AuthResult is the outcome of a developer authentication call.
// SessionCached reports whether a session cookie was captured; per the
// upstream contract a login can succeed without yielding a usable session.
type AuthResult struct {
	PortalID      string
	SessionCached bool
}

// Decode unmarshals a raw response body into v, wrapping failures as a
// DecodeError for the given endpoint.
func Decode(endpoint string, raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}
