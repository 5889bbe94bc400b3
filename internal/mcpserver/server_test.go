package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbrannst/mcp-konnect-portal/internal/tools"
)

func TestInputSchema(t *testing.T) {
	min := 1.0
	max := 1000.0
	params := tools.ParameterSchema{
		Type: "object",
		Properties: map[string]tools.PropertySchema{
			"portalId": {Type: "string", Description: "Portal identifier"},
			"pageSize": {Type: "integer", Minimum: &min, Maximum: &max},
		},
		Required: []string{"portalId"},
	}

	schema, err := inputSchema(params)
	require.NoError(t, err)
	assert.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "portalId")
	assert.Equal(t, "string", schema.Properties["portalId"].Type)
	assert.Equal(t, []string{"portalId"}, schema.Required)
}

func TestNewServer_RegistersRegistryTools(t *testing.T) {
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(&tools.Tool{
		Definition: tools.ToolDefinition{
			Name:        "ping",
			Description: "Reply with pong",
			Parameters:  tools.ParameterSchema{Type: "object"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"pong": true}, nil
		},
	}))

	server, err := NewServer(registry)
	require.NoError(t, err)
	assert.NotNil(t, server)
}
