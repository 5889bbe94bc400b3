package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
	"github.com/jbrannst/mcp-konnect-portal/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(&tools.Tool{
		Definition: tools.ToolDefinition{
			Name:        "echo",
			Description: "Echo the input back",
			Parameters: tools.ParameterSchema{
				Type: "object",
				Properties: map[string]tools.PropertySchema{
					"value": {Type: "string"},
				},
				Required: []string{"value"},
			},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"echoed": params["value"]}, nil
		},
	}))
	require.NoError(t, registry.Register(&tools.Tool{
		Definition: tools.ToolDefinition{
			Name:       "always_fails",
			Parameters: tools.ParameterSchema{Type: "object"},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, errors.New("upstream exploded")
		},
	}))

	cfg := Config{
		ListenAddress: ":0",
		BasePath:      "/api/v1",
	}
	return NewServer(registry, cfg, &observability.NoopLogger{}, true)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ToolResponse {
	t.Helper()
	var resp ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(s, http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	definitions := resp.Result.([]interface{})
	assert.Len(t, definitions, 2)
}

func TestGetToolSchema(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/tools/echo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"echo"`)

	w = doRequest(s, http.MethodGet, "/api/v1/tools/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteTool(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/tools/echo", `{"value":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, "hi", result["echoed"])
}

func TestExecuteTool_MissingRequiredParam(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/tools/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "missing required parameter")
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/tools/echo", `{"value":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteTool_HandlerErrorBecomesEnvelope(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/tools/always_fails", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "upstream exploded")
	assert.Contains(t, resp.Error, "list_portals")
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(s, http.MethodPost, "/api/v1/tools/nope", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-ID"))
}
