package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTool(name string) *Tool {
	return &Tool{
		Definition: ToolDefinition{
			Name: name,
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"portalId": {Type: "string"},
					"pageSize": {
						Type:    "integer",
						Minimum: floatPtr(1),
						Maximum: floatPtr(1000),
					},
					"sort": {
						Type: "string",
						Enum: []string{"name", "created_at"},
					},
					"verbose": {Type: "boolean"},
				},
				Required: []string{"portalId"},
			},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"ok": true}, nil
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(testTool("alpha")))

	tool, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", tool.Definition.Name)

	_, err = registry.Get("missing")
	assert.Error(t, err)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(testTool("alpha")))
	assert.Error(t, registry.Register(testTool("alpha")))
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		require.NoError(t, registry.Register(testTool(name)))
	}

	names := []string{}
	for _, tool := range registry.List() {
		names = append(names, tool.Definition.Name)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestValidateParams(t *testing.T) {
	tool := testTool("alpha")

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr string
	}{
		{
			name:   "valid",
			params: map[string]interface{}{"portalId": "p1", "pageSize": float64(25), "sort": "name", "verbose": true},
		},
		{
			name:    "missing required",
			params:  map[string]interface{}{"pageSize": float64(25)},
			wantErr: "missing required parameter: portalId",
		},
		{
			name:    "wrong type",
			params:  map[string]interface{}{"portalId": 42},
			wantErr: "must be a string",
		},
		{
			name:    "enum violation",
			params:  map[string]interface{}{"portalId": "p1", "sort": "size"},
			wantErr: "must be one of",
		},
		{
			name:    "integer below minimum",
			params:  map[string]interface{}{"portalId": "p1", "pageSize": float64(0)},
			wantErr: "must be at least",
		},
		{
			name:    "integer above maximum",
			params:  map[string]interface{}{"portalId": "p1", "pageSize": float64(1001)},
			wantErr: "must be at most",
		},
		{
			name:    "fractional integer",
			params:  map[string]interface{}{"portalId": "p1", "pageSize": 2.5},
			wantErr: "must be an integer",
		},
		{
			name:    "boolean type",
			params:  map[string]interface{}{"portalId": "p1", "verbose": "yes"},
			wantErr: "must be a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tool.ValidateParams(tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
