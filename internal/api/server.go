// Package api exposes the registered tools over HTTP: list tools, fetch a
// tool's schema, execute a tool. Errors thrown by handlers are rendered as
// uniform error envelopes here, not inside the core.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
	"github.com/jbrannst/mcp-konnect-portal/internal/tools"
)

// Config holds API server configuration
type Config struct {
	ListenAddress string          `mapstructure:"listen_address"`
	BasePath      string          `mapstructure:"base_path"`
	ReadTimeout   time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout   time.Duration   `mapstructure:"idle_timeout"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
}

// ToolResponse is the uniform envelope for tool endpoints
type ToolResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server represents the API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	registry *tools.Registry
	logger   observability.Logger
	config   Config
	hasToken bool
}

// NewServer creates a new API server
func NewServer(registry *tools.Registry, cfg Config, logger observability.Logger, hasToken bool) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	if cfg.RateLimit.Enabled {
		router.Use(RateLimiter(cfg.RateLimit))
	}

	s := &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   cfg,
		hasToken: hasToken,
	}

	router.GET("/health", s.health)

	group := router.Group(cfg.BasePath)
	group.GET("/tools", s.listTools)
	group.GET("/tools/:tool_name", s.getToolSchema)
	group.POST("/tools/:tool_name", s.executeTool)

	s.server = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router returns the underlying gin router, primarily for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins listening for requests
func (s *Server) Start() error {
	s.logger.Info("API server listening", map[string]interface{}{
		"address": s.config.ListenAddress,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"konnect_token":    s.hasToken,
		"registered_tools": len(s.registry.List()),
	})
}

func (s *Server) listTools(c *gin.Context) {
	registered := s.registry.List()
	definitions := make([]tools.ToolDefinition, 0, len(registered))
	for _, tool := range registered {
		definitions = append(definitions, tool.Definition)
	}
	c.JSON(http.StatusOK, ToolResponse{Success: true, Result: definitions})
}

func (s *Server) getToolSchema(c *gin.Context) {
	tool, err := s.registry.Get(c.Param("tool_name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ToolResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ToolResponse{Success: true, Result: tool.Definition})
}

func (s *Server) executeTool(c *gin.Context) {
	tool, err := s.registry.Get(c.Param("tool_name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ToolResponse{Success: false, Error: err.Error()})
		return
	}

	params := map[string]interface{}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, ToolResponse{Success: false, Error: "invalid JSON body: " + err.Error()})
			return
		}
	}

	if err := tool.ValidateParams(params); err != nil {
		c.JSON(http.StatusBadRequest, ToolResponse{Success: false, Error: err.Error()})
		return
	}

	result, err := tool.Handler(c.Request.Context(), params)
	if err != nil {
		s.logger.Error("tool execution failed", map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"tool":       tool.Definition.Name,
			"error":      err.Error(),
		})
		c.JSON(http.StatusOK, ToolResponse{
			Success: false,
			Error:   err.Error() + ". Verify the identifiers and credentials involved, then retry; list_portals shows the available portals.",
		})
		return
	}

	c.JSON(http.StatusOK, ToolResponse{Success: true, Result: result})
}
