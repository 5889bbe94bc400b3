package tools

import (
	"github.com/jbrannst/mcp-konnect-portal/internal/konnect"
	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
)

// PortalToolProvider provides the developer-portal tools
type PortalToolProvider struct {
	client *konnect.Client
	logger observability.Logger
}

// NewPortalToolProvider creates a new PortalToolProvider
func NewPortalToolProvider(client *konnect.Client, logger observability.Logger) *PortalToolProvider {
	return &PortalToolProvider{
		client: client,
		logger: logger,
	}
}

// RegisterTools registers all portal tools with the registry
func (p *PortalToolProvider) RegisterTools(registry *Registry) error {
	for _, tool := range []*Tool{
		p.listPortalsTool(),
		p.listAPIsTool(),
		p.getAPISpecificationsTool(),
		p.listApplicationsTool(),
		p.createApplicationTool(),
		p.listSubscriptionsTool(),
		p.subscribeToAPITool(),
		p.generateAPIKeyTool(),
		p.authenticateDeveloperTool(),
	} {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }

// portalIDProperty is shared by every portal-scoped tool
func portalIDProperty() PropertySchema {
	return PropertySchema{
		Type:        "string",
		Description: "Portal identifier. Use list_portals to discover portal identifiers.",
	}
}

func pageSizeProperty() PropertySchema {
	return PropertySchema{
		Type:        "integer",
		Description: "Number of items per page",
		Default:     10,
		Minimum:     floatPtr(1),
		Maximum:     floatPtr(1000),
	}
}

func pageNumberProperty() PropertySchema {
	return PropertySchema{
		Type:        "integer",
		Description: "Page number to retrieve (1-based)",
		Default:     1,
		Minimum:     floatPtr(1),
	}
}

func (p *PortalToolProvider) listPortalsTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "list_portals",
			Description: "List developer portals in the Konnect organization. This is the entry point for discovering portal identifiers used by every other tool.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"pageSize":   pageSizeProperty(),
					"pageNumber": pageNumberProperty(),
					"filterName": {
						Type:        "string",
						Description: "Only return portals whose name contains this value",
					},
				},
			},
			Tags: []string{"konnect", "portal"},
		},
		Handler: p.handleListPortals,
	}
}

func (p *PortalToolProvider) listAPIsTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "list_apis",
			Description: "List the APIs published to a developer portal's catalog.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId":   portalIDProperty(),
					"pageSize":   pageSizeProperty(),
					"pageNumber": pageNumberProperty(),
					"filterName": {
						Type:        "string",
						Description: "Only return APIs whose name contains this value",
					},
					"sort": {
						Type:        "string",
						Description: "Sort field, e.g. name or created_at",
					},
				},
				Required: []string{"portalId"},
			},
			Tags: []string{"konnect", "api"},
		},
		Handler: p.handleListAPIs,
	}
}

func (p *PortalToolProvider) getAPISpecificationsTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "get_api_specifications",
			Description: "Fetch the specification documents (e.g. OpenAPI) attached to an API in a developer portal.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"apiId": {
						Type:        "string",
						Description: "API identifier. Use list_apis to discover API identifiers.",
					},
				},
				Required: []string{"portalId", "apiId"},
			},
			Tags: []string{"konnect", "api"},
		},
		Handler: p.handleGetAPISpecifications,
	}
}

func (p *PortalToolProvider) listApplicationsTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "list_applications",
			Description: "List the authenticated developer's applications in a portal. Requires a developer session (authenticate_developer) for private portals.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId":   portalIDProperty(),
					"pageSize":   pageSizeProperty(),
					"pageNumber": pageNumberProperty(),
					"filterName": {
						Type:        "string",
						Description: "Only return applications whose name contains this value",
					},
				},
				Required: []string{"portalId"},
			},
			Tags: []string{"konnect", "application"},
		},
		Handler: p.handleListApplications,
	}
}

func (p *PortalToolProvider) createApplicationTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "create_application",
			Description: "Create a new application in a developer portal.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"name": {
						Type:        "string",
						Description: "Application name",
					},
					"description": {
						Type:        "string",
						Description: "Application description",
					},
				},
				Required: []string{"portalId", "name"},
			},
			Tags: []string{"konnect", "application"},
		},
		Handler: p.handleCreateApplication,
	}
}

func (p *PortalToolProvider) listSubscriptionsTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "list_subscriptions",
			Description: "List API subscriptions in a developer portal, optionally filtered by application or API.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"applicationId": {
						Type:        "string",
						Description: "Only return subscriptions for this application",
					},
					"apiId": {
						Type:        "string",
						Description: "Only return subscriptions for this API",
					},
					"pageSize":   pageSizeProperty(),
					"pageNumber": pageNumberProperty(),
				},
				Required: []string{"portalId"},
			},
			Tags: []string{"konnect", "subscription"},
		},
		Handler: p.handleListSubscriptions,
	}
}

func (p *PortalToolProvider) subscribeToAPITool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "subscribe_to_api",
			Description: "Subscribe an application to an API. Pass applicationId \"new\" together with appName to create the application first and subscribe it in one step.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"apiId": {
						Type:        "string",
						Description: "API identifier to subscribe to",
					},
					"applicationId": {
						Type:        "string",
						Description: "Application identifier, or \"new\" to create one",
					},
					"appName": {
						Type:        "string",
						Description: "Name for the application when applicationId is \"new\"",
					},
				},
				Required: []string{"portalId", "apiId", "applicationId"},
			},
			Tags: []string{"konnect", "subscription"},
		},
		Handler: p.handleSubscribeToAPI,
	}
}

func (p *PortalToolProvider) generateAPIKeyTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "generate_api_key",
			Description: "Generate an API key credential for an application. The key value is returned once and can never be retrieved again.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"applicationId": {
						Type:        "string",
						Description: "Application identifier to create the credential for",
					},
					"displayName": {
						Type:        "string",
						Description: "Display name for the credential",
					},
				},
				Required: []string{"portalId", "applicationId"},
			},
			Tags: []string{"konnect", "credential"},
		},
		Handler: p.handleGenerateAPIKey,
	}
}

func (p *PortalToolProvider) authenticateDeveloperTool() *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name:        "authenticate_developer",
			Description: "Log a developer in against a portal and cache the session for subsequent calls. Credentials fall back to the configured defaults when omitted.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": portalIDProperty(),
					"username": {
						Type:        "string",
						Description: "Developer username; defaults to the configured value",
					},
					"password": {
						Type:        "string",
						Description: "Developer password; defaults to the configured value",
					},
				},
				Required: []string{"portalId"},
			},
			Tags: []string{"konnect", "auth"},
		},
		Handler: p.handleAuthenticateDeveloper,
	}
}
