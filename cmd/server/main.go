package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jbrannst/mcp-konnect-portal/internal/api"
	"github.com/jbrannst/mcp-konnect-portal/internal/config"
	"github.com/jbrannst/mcp-konnect-portal/internal/konnect"
	"github.com/jbrannst/mcp-konnect-portal/internal/mcpserver"
	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
	"github.com/jbrannst/mcp-konnect-portal/internal/tools"
)

func main() {
	stdio := flag.Bool("stdio", false, "serve tools over the MCP stdio transport instead of HTTP")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("server")

	client, err := konnect.NewClient(cfg.Konnect, logger.WithPrefix("konnect"))
	if err != nil {
		log.Fatalf("Failed to create Konnect client: %v", err)
	}

	registry := tools.NewRegistry()
	provider := tools.NewPortalToolProvider(client, logger.WithPrefix("tools"))
	if err := provider.RegisterTools(registry); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	if *stdio {
		if err := mcpserver.Run(ctx, registry); err != nil {
			log.Fatalf("MCP stdio server error: %v", err)
		}
		return
	}

	server := api.NewServer(registry, cfg.API, logger, cfg.Konnect.AccessToken != "")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("API server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}
}
