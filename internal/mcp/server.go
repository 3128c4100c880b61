// Package mcp exposes find and replace as Model Context Protocol tools
// served over stdio.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Server manages the MCP server lifecycle.
type Server struct {
	searcher Searcher
	metrics  *CallMetrics
	mcp      *server.MCPServer
}

// NewServer creates an MCP server with every lasr tool registered.
func NewServer(searcher Searcher, version string) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}

	metrics := NewCallMetrics()
	mcpServer := server.NewMCPServer(
		"lasr",
		version,
		server.WithToolCapabilities(true),
	)

	AddFindTool(mcpServer, searcher, metrics)
	AddReplaceTool(mcpServer, searcher, metrics)
	AddStatsTool(mcpServer, metrics)

	return &Server{
		searcher: searcher,
		metrics:  metrics,
		mcp:      mcpServer,
	}, nil
}

// Metrics returns the server's call counters.
func (s *Server) Metrics() *CallMetrics {
	return s.metrics
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msg("starting MCP server on stdio")
		stdio := server.NewStdioServer(s.mcp)
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- errors.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		logger.Info().Msg("received shutdown signal, stopping gracefully")
		cancel()
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
