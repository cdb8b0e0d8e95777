package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/turtle/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP exposes turtle sessions as MCP tools over the chosen transport.
func RunMCP(ctx context.Context, opts RunOptions, transport string, port int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	srv := mcp.NewServer(newManager(cfg, stores, logger), mcp.WithLogger(logger))

	switch transport {
	case TransportStdio:
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting Turtle MCP Server (Stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting Turtle MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
	}
}
