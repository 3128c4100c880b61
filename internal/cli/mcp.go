package cli

import (
	"os"

	"github.com/rcorre/lasr/internal/logging"
	"github.com/rcorre/lasr/internal/mcp"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [root]",
	Short: "Start the MCP server for find and replace",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants search and rewrite the project.

The MCP server:
- Provides lasr_find, lasr_replace and lasr_stats tools
- Resolves every requested path under the project root (default: current directory)
- Applies the same configuration as the interactive view
- Communicates via stdio (standard MCP transport), logging JSON to stderr

Example:
  lasr mcp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	// stdout carries the protocol
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	searcher, err := mcp.NewSearcher(cfg, root, pattern.NewAstGrepProvider(cfg.ProviderConfig()))
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(searcher, Version)
	if err != nil {
		return errors.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info().Str("root", root).Str("version", Version).Msg("lasr MCP server")
	if err := server.Serve(ctx); err != nil {
		return errors.Errorf("MCP server error: %w", err)
	}
	return nil
}
