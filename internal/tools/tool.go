// Package tools provides the tool registry and the developer-portal
// operations exposed through it.
package tools

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// ToolDefinition represents a tool that can be invoked by an AI model
type ToolDefinition struct {
	// Name is the unique identifier for this tool
	Name string `json:"name"`

	// Description is a human-readable description of the tool
	Description string `json:"description"`

	// Parameters defines the schema for the tool's parameters
	Parameters ParameterSchema `json:"parameters"`

	// Tags for categorizing and filtering tools
	Tags []string `json:"tags,omitempty"`
}

// ParameterSchema defines the schema for a tool's parameters
type ParameterSchema struct {
	// Type is the schema type (usually "object")
	Type string `json:"type"`

	// Properties defines the parameters as property schemas
	Properties map[string]PropertySchema `json:"properties"`

	// Required lists the names of required parameters
	Required []string `json:"required,omitempty"`
}

// PropertySchema defines the schema for a parameter property
type PropertySchema struct {
	// Type is the data type of the property
	Type string `json:"type"`

	// Description is a human-readable description of the property
	Description string `json:"description"`

	// Enum lists the possible values for this property (if applicable)
	Enum []string `json:"enum,omitempty"`

	// Default is the default value for this property (if applicable)
	Default interface{} `json:"default,omitempty"`

	// Minimum and Maximum bound numeric properties (if applicable)
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Handler is a function that executes a tool call
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Tool represents a complete tool with definition and handler
type Tool struct {
	Definition ToolDefinition
	Handler    Handler
}

// Registry holds all available tools
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register registers a tool with the registry
func (r *Registry) Register(tool *Tool) error {
	if _, exists := r.tools[tool.Definition.Name]; exists {
		return fmt.Errorf("tool '%s' is already registered", tool.Definition.Name)
	}
	r.tools[tool.Definition.Name] = tool
	return nil
}

// Get returns a tool by name
func (r *Registry) Get(name string) (*Tool, error) {
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return tool, nil
}

// List returns all registered tools ordered by name
func (r *Registry) List() []*Tool {
	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Definition.Name < tools[j].Definition.Name
	})
	return tools
}

// ValidateParams validates tool parameters against the tool's schema
func (t *Tool) ValidateParams(params map[string]interface{}) error {
	for _, required := range t.Definition.Parameters.Required {
		if _, exists := params[required]; !exists {
			return fmt.Errorf("missing required parameter: %s", required)
		}
	}

	for name, schema := range t.Definition.Parameters.Properties {
		value, exists := params[name]
		if !exists {
			continue
		}
		if err := validateProperty(name, value, schema); err != nil {
			return err
		}
	}

	return nil
}

// validateProperty validates a property value against its schema
func validateProperty(name string, value interface{}, schema PropertySchema) error {
	if value == nil {
		return nil
	}

	switch schema.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("parameter '%s' must be a string", name)
		}

		if len(schema.Enum) > 0 {
			valid := false
			for _, enumValue := range schema.Enum {
				if str == enumValue {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("parameter '%s' must be one of: %s", name, strings.Join(schema.Enum, ", "))
			}
		}

	case "number":
		num, ok := asFloat(value)
		if !ok {
			return fmt.Errorf("parameter '%s' must be a number", name)
		}
		return checkBounds(name, num, schema)

	case "integer":
		// JSON-decoded numbers arrive as float64, so whole floats count
		num, ok := asFloat(value)
		if !ok || num != math.Trunc(num) {
			return fmt.Errorf("parameter '%s' must be an integer", name)
		}
		return checkBounds(name, num, schema)

	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("parameter '%s' must be a boolean", name)
		}

	case "array":
		kind := reflect.TypeOf(value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return fmt.Errorf("parameter '%s' must be an array", name)
		}

	case "object":
		if reflect.TypeOf(value).Kind() != reflect.Map {
			return fmt.Errorf("parameter '%s' must be an object", name)
		}
	}

	return nil
}

func checkBounds(name string, num float64, schema PropertySchema) error {
	if schema.Minimum != nil && num < *schema.Minimum {
		return fmt.Errorf("parameter '%s' must be at least %v", name, *schema.Minimum)
	}
	if schema.Maximum != nil && num > *schema.Maximum {
		return fmt.Errorf("parameter '%s' must be at most %v", name, *schema.Maximum)
	}
	return nil
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
