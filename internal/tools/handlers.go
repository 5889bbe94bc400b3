package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jbrannst/mcp-konnect-portal/internal/konnect"
)

// applicationSentinel in subscribe_to_api requests the implicit creation of
// a new application when a name is also supplied.
const applicationSentinel = "new"

// Parameter helpers. Arguments arrive as a JSON-decoded map, so numbers are
// float64 and everything is optional until the schema says otherwise.

func stringParam(params map[string]interface{}, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]interface{}, name string, def int) int {
	switch v := params[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func requirePortalID(params map[string]interface{}) (string, error) {
	portalID := stringParam(params, "portalId")
	if portalID == "" {
		return "", fmt.Errorf("portalId is required; call list_portals to discover portal identifiers")
	}
	return portalID, nil
}

// listQuery builds the bracketed pagination/filter query string the portal
// and admin APIs share: page[size], page[number], filter[...], sort.
func listQuery(pageSize, pageNumber int, extra url.Values) string {
	q := url.Values{}
	q.Set("page[size]", strconv.Itoa(pageSize))
	q.Set("page[number]", strconv.Itoa(pageNumber))
	for key, values := range extra {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	return q.Encode()
}

// pageMetadata round-trips the requested page through the output and adds
// whatever counts the upstream reported.
func pageMetadata(meta *konnect.ListMeta, pageSize, pageNumber int) map[string]interface{} {
	m := map[string]interface{}{
		"pageSize":   pageSize,
		"pageNumber": pageNumber,
	}
	if meta != nil {
		m["totalCount"] = meta.TotalCount
		m["pageCount"] = meta.PageCount
	}
	return m
}

func auditMetadata(createdAt, updatedAt string) map[string]interface{} {
	return map[string]interface{}{
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}
}

func (p *PortalToolProvider) handleListPortals(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	pageSize := intParam(params, "pageSize", 10)
	pageNumber := intParam(params, "pageNumber", 1)

	extra := url.Values{}
	if name := stringParam(params, "filterName"); name != "" {
		extra.Set("filter[name][contains]", name)
	}

	endpoint := "/portals?" + listQuery(pageSize, pageNumber, extra)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{Endpoint: endpoint, Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	var list konnect.PortalList
	if err := konnect.Decode("/portals", raw, &list); err != nil {
		return nil, err
	}

	portals := make([]map[string]interface{}, 0, len(list.Data))
	for _, portal := range list.Data {
		portals = append(portals, map[string]interface{}{
			"portalId":    portal.ID,
			"name":        portal.Name,
			"description": portal.Description,
			"isPublic":    portal.IsPublic,
			"domain":      portal.CanonicalDomain,
			"metadata":    auditMetadata(portal.CreatedAt, portal.UpdatedAt),
		})
	}

	return map[string]interface{}{
		"portals":      portals,
		"metadata":     pageMetadata(list.Meta, pageSize, pageNumber),
		"relatedTools": []string{"list_apis", "list_applications", "authenticate_developer"},
	}, nil
}

func (p *PortalToolProvider) handleListAPIs(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	pageSize := intParam(params, "pageSize", 10)
	pageNumber := intParam(params, "pageNumber", 1)

	extra := url.Values{}
	if name := stringParam(params, "filterName"); name != "" {
		extra.Set("filter[name][contains]", name)
	}
	if sortBy := stringParam(params, "sort"); sortBy != "" {
		extra.Set("sort", sortBy)
	}

	endpoint := "/api/v3/apis?" + listQuery(pageSize, pageNumber, extra)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         endpoint,
		Method:           http.MethodGet,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var list konnect.APIList
	if err := konnect.Decode("/api/v3/apis", raw, &list); err != nil {
		return nil, err
	}

	apis := make([]map[string]interface{}, 0, len(list.Data))
	for _, api := range list.Data {
		apis = append(apis, map[string]interface{}{
			"apiId":       api.ID,
			"name":        api.Name,
			"description": api.Description,
			"version":     api.Version,
			"published":   api.Published,
			"deprecated":  api.Deprecated,
			"metadata":    auditMetadata(api.CreatedAt, api.UpdatedAt),
		})
	}

	return map[string]interface{}{
		"portalId":     portalID,
		"apis":         apis,
		"metadata":     pageMetadata(list.Meta, pageSize, pageNumber),
		"relatedTools": []string{"get_api_specifications", "subscribe_to_api"},
	}, nil
}

func (p *PortalToolProvider) handleGetAPISpecifications(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	apiID := stringParam(params, "apiId")
	if apiID == "" {
		return nil, fmt.Errorf("apiId is required; call list_apis to discover API identifiers")
	}

	listEndpoint := fmt.Sprintf("/api/v3/apis/%s/specifications", apiID)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         listEndpoint,
		Method:           http.MethodGet,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"portalId":     portalID,
		"apiId":        apiID,
		"relatedTools": []string{"list_apis", "subscribe_to_api"},
	}

	// A missing data array and an undecodable body both mean "no
	// specifications"; neither stops the tool.
	var discovery konnect.SpecificationList
	if err := konnect.Decode(listEndpoint, raw, &discovery); err != nil || discovery.Data == nil {
		result["specifications"] = []map[string]interface{}{}
		return result, nil
	}

	specs := make([]map[string]interface{}, 0, len(discovery.Data))
	for _, entry := range discovery.Data {
		fetchEndpoint := fmt.Sprintf("%s/%s", listEndpoint, entry.ID)
		rawSpec, err := p.client.Request(ctx, konnect.RequestOptions{
			Endpoint:         fetchEndpoint,
			Method:           http.MethodGet,
			UsePortalContext: true,
			PortalID:         portalID,
		})
		if err != nil {
			return nil, err
		}

		var spec konnect.Specification
		if err := konnect.Decode(fetchEndpoint, rawSpec, &spec); err != nil {
			return nil, err
		}
		specs = append(specs, map[string]interface{}{
			"specId":  entry.ID,
			"name":    spec.Name,
			"format":  spec.Type,
			"content": spec.Content,
		})
	}

	result["specifications"] = specs
	return result, nil
}

func (p *PortalToolProvider) handleListApplications(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	pageSize := intParam(params, "pageSize", 10)
	pageNumber := intParam(params, "pageNumber", 1)

	extra := url.Values{}
	if name := stringParam(params, "filterName"); name != "" {
		extra.Set("filter[name][contains]", name)
	}

	endpoint := "/api/v3/applications?" + listQuery(pageSize, pageNumber, extra)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         endpoint,
		Method:           http.MethodGet,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var list konnect.ApplicationList
	if err := konnect.Decode("/api/v3/applications", raw, &list); err != nil {
		return nil, err
	}

	applications := make([]map[string]interface{}, 0, len(list.Data))
	for _, app := range list.Data {
		applications = append(applications, map[string]interface{}{
			"applicationId": app.ID,
			"name":          app.Name,
			"description":   app.Description,
			"status":        app.Status,
			"metadata":      auditMetadata(app.CreatedAt, app.UpdatedAt),
		})
	}

	return map[string]interface{}{
		"portalId":     portalID,
		"applications": applications,
		"metadata":     pageMetadata(list.Meta, pageSize, pageNumber),
		"relatedTools": []string{"create_application", "generate_api_key", "list_subscriptions"},
	}, nil
}

// createApplication performs the portal "create application" call and
// validates that an identifier came back.
func (p *PortalToolProvider) createApplication(ctx context.Context, portalID, name, description string) (*konnect.Application, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}

	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         "/api/v3/applications",
		Method:           http.MethodPost,
		Body:             body,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var app konnect.Application
	if err := konnect.Decode("/api/v3/applications", raw, &app); err != nil {
		return nil, err
	}
	if app.ID == "" {
		return nil, &konnect.DecodeError{
			Endpoint: "/api/v3/applications",
			Err:      errors.New("created application has no id"),
		}
	}
	return &app, nil
}

func (p *PortalToolProvider) handleCreateApplication(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	name := stringParam(params, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required to create an application")
	}

	app, err := p.createApplication(ctx, portalID, name, stringParam(params, "description"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"portalId":      portalID,
		"applicationId": app.ID,
		"name":          app.Name,
		"description":   app.Description,
		"metadata":      auditMetadata(app.CreatedAt, app.UpdatedAt),
		"relatedTools":  []string{"subscribe_to_api", "generate_api_key"},
	}, nil
}

func (p *PortalToolProvider) handleListSubscriptions(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	pageSize := intParam(params, "pageSize", 10)
	pageNumber := intParam(params, "pageNumber", 1)

	extra := url.Values{}
	if appID := stringParam(params, "applicationId"); appID != "" {
		extra.Set("filter[application_id][eq]", appID)
	}
	if apiID := stringParam(params, "apiId"); apiID != "" {
		extra.Set("filter[api_id][eq]", apiID)
	}

	endpoint := "/api/v3/api-subscriptions?" + listQuery(pageSize, pageNumber, extra)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         endpoint,
		Method:           http.MethodGet,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var list konnect.SubscriptionList
	if err := konnect.Decode("/api/v3/api-subscriptions", raw, &list); err != nil {
		return nil, err
	}

	subscriptions := make([]map[string]interface{}, 0, len(list.Data))
	for _, sub := range list.Data {
		subscriptions = append(subscriptions, map[string]interface{}{
			"subscriptionId": sub.ID,
			"apiId":          sub.APIID,
			"applicationId":  sub.ApplicationID,
			"status":         sub.Status,
			"metadata":       auditMetadata(sub.CreatedAt, sub.UpdatedAt),
		})
	}

	return map[string]interface{}{
		"portalId":      portalID,
		"subscriptions": subscriptions,
		"metadata":      pageMetadata(list.Meta, pageSize, pageNumber),
		"relatedTools":  []string{"subscribe_to_api", "list_apis"},
	}, nil
}

func (p *PortalToolProvider) handleSubscribeToAPI(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	apiID := stringParam(params, "apiId")
	if apiID == "" {
		return nil, fmt.Errorf("apiId is required; call list_apis to discover API identifiers")
	}
	applicationID := stringParam(params, "applicationId")
	if applicationID == "" {
		return nil, fmt.Errorf("applicationId is required; pass \"new\" with appName to create one")
	}

	var createdApp map[string]interface{}

	// With the sentinel id and a name, create the application first and
	// subscribe the result. Without a name the sentinel is passed through
	// verbatim and the upstream rejects it; that mirrors the observed
	// behavior of the original client.
	if applicationID == applicationSentinel {
		if appName := stringParam(params, "appName"); appName != "" {
			app, err := p.createApplication(ctx, portalID, appName, "")
			if err != nil {
				return nil, err
			}
			applicationID = app.ID
			createdApp = map[string]interface{}{
				"applicationId": app.ID,
				"name":          app.Name,
			}
		}
	}

	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint: "/api/v3/api-subscriptions",
		Method:   http.MethodPost,
		Body: map[string]string{
			"api_id":         apiID,
			"application_id": applicationID,
		},
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var sub konnect.Subscription
	if err := konnect.Decode("/api/v3/api-subscriptions", raw, &sub); err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"portalId":       portalID,
		"subscriptionId": sub.ID,
		"apiId":          apiID,
		"applicationId":  applicationID,
		"status":         sub.Status,
		"metadata":       auditMetadata(sub.CreatedAt, sub.UpdatedAt),
		"relatedTools":   []string{"list_subscriptions", "generate_api_key"},
	}
	if createdApp != nil {
		result["createdApplication"] = createdApp
	}
	return result, nil
}

func (p *PortalToolProvider) handleGenerateAPIKey(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}
	applicationID := stringParam(params, "applicationId")
	if applicationID == "" {
		return nil, fmt.Errorf("applicationId is required; call list_applications to discover application identifiers")
	}

	body := map[string]string{}
	if displayName := stringParam(params, "displayName"); displayName != "" {
		body["display_name"] = displayName
	}

	endpoint := fmt.Sprintf("/api/v3/applications/%s/credentials", applicationID)
	raw, err := p.client.Request(ctx, konnect.RequestOptions{
		Endpoint:         endpoint,
		Method:           http.MethodPost,
		Body:             body,
		UsePortalContext: true,
		PortalID:         portalID,
	})
	if err != nil {
		return nil, err
	}

	var credential konnect.Credential
	if err := konnect.Decode(endpoint, raw, &credential); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"portalId":      portalID,
		"applicationId": applicationID,
		"credentialId":  credential.ID,
		"apiKey":        credential.Secret,
		"displayName":   credential.DisplayName,
		"expiresAt":     credential.ExpiresAt,
		"warning":       "Store this key now. It is shown only in this response and can never be retrieved again.",
		"metadata": map[string]interface{}{
			"createdAt": credential.CreatedAt,
		},
		"relatedTools": []string{"list_applications"},
	}, nil
}

func (p *PortalToolProvider) handleAuthenticateDeveloper(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	portalID, err := requirePortalID(params)
	if err != nil {
		return nil, err
	}

	result, err := p.client.Authenticate(ctx, portalID, stringParam(params, "username"), stringParam(params, "password"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"authenticated": true,
		"portalId":      result.PortalID,
		"relatedTools":  []string{"list_applications", "list_subscriptions"},
	}, nil
}
