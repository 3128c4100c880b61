package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rcorre/lasr/internal/finder"
	mcputils "github.com/rcorre/lasr/internal/mcp-utils"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rcorre/lasr/internal/walk"
	"gitlab.com/tozd/go/errors"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddFindTool registers the lasr_find tool with an MCP server.
//
// lasr_find runs the same search as the interactive view: patterns
// containing $METAVARIABLES are structural, everything else is a regex.
func AddFindTool(s *server.MCPServer, searcher Searcher, metrics *CallMetrics) {
	tool := mcp.NewTool(
		"lasr_find",
		mcp.WithDescription("Find every match of a regex or structural pattern in the project. Patterns containing $METAVARIABLES (e.g. 'fmt.Println($ARG)') match syntax trees; all other patterns are Go regular expressions."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Regex (e.g. 'foo(\\d+)') or structural pattern (e.g. 'defer $FUNC()')")),
		mcp.WithArray("paths",
			mcp.Description("Files or directories to search, relative to the project root (default: whole project)")),
		mcp.WithBoolean("ignore_case",
			mcp.Description("Case-insensitive regex matching")),
		mcp.WithBoolean("multi_line",
			mcp.Description("Allow regex matches to span lines")),
		mcp.WithArray("types",
			mcp.Description("Only search these file types (e.g. ['go', 'rust'])")),
		mcp.WithArray("types_not",
			mcp.Description("Never search these file types")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum matches to return (1-1000, default: 100)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFindHandler(searcher, metrics))
}

// AddReplaceTool registers the lasr_replace tool with an MCP server.
func AddReplaceTool(s *server.MCPServer, searcher Searcher, metrics *CallMetrics) {
	tool := mcp.NewTool(
		"lasr_replace",
		mcp.WithDescription("Replace every match of a pattern across the project and rewrite the files. Regex replacements may reference groups as $1 or ${name}; structural replacements may reference metavariables as $NAME. Use dry_run to preview without writing."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Regex or structural pattern to replace")),
		mcp.WithString("replacement",
			mcp.Required(),
			mcp.Description("Replacement template (may be empty to delete matches)")),
		mcp.WithArray("paths",
			mcp.Description("Files or directories to rewrite, relative to the project root (default: whole project)")),
		mcp.WithBoolean("ignore_case",
			mcp.Description("Case-insensitive regex matching")),
		mcp.WithBoolean("multi_line",
			mcp.Description("Allow regex matches to span lines")),
		mcp.WithArray("types",
			mcp.Description("Only rewrite these file types")),
		mcp.WithArray("types_not",
			mcp.Description("Never rewrite these file types")),
		mcp.WithBoolean("dry_run",
			mcp.Description("Compute previews and outcomes without writing files")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum previews to return (1-1000, default: 100)")),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.AddTool(tool, createReplaceHandler(searcher, metrics))
}

// AddStatsTool registers lasr_stats, which reports per-tool call counters.
func AddStatsTool(s *server.MCPServer, metrics *CallMetrics) {
	tool := mcp.NewTool(
		"lasr_stats",
		mcp.WithDescription("Report call counts, failures and timings of the lasr tools since the server started."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResponse(metrics.Snapshot())
	})
}

func createFindHandler(searcher Searcher, metrics *CallMetrics) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req FindRequest
		if err := mcputils.Bind(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}

		start := time.Now()
		resp, err := searcher.Find(ctx, &req)
		if err != nil {
			metrics.RecordCall("lasr_find", time.Since(start), err, 0)
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		metrics.RecordCall("lasr_find", time.Since(start), nil, resp.Total)

		return marshalToolResponse(resp)
	}
}

func createReplaceHandler(searcher Searcher, metrics *CallMetrics) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.GetRawArguments().(map[string]any)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ReplaceRequest
		if err := mcputils.Bind(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}
		// An empty replacement deletes matches, so only absence is an error
		if _, ok := args["replacement"]; !ok {
			return mcp.NewToolResultError("replacement parameter is required"), nil
		}

		start := time.Now()
		resp, err := searcher.Replace(ctx, &req)
		if err != nil {
			metrics.RecordCall("lasr_replace", time.Since(start), err, 0)
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		metrics.RecordCall("lasr_replace", time.Since(start), nil, resp.Changed)

		return marshalToolResponse(resp)
	}
}

// isUserError determines if an error should be shown to the LLM (user error)
// vs treated as an internal system error.
//
// User errors:
// - Empty or invalid patterns, structural patterns that do not parse
// - Unknown file types and missing paths
// - Paths outside the project root
// - Malformed arguments
func isUserError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		finder.ErrEmptyPattern,
		finder.ErrInvalidPattern,
		finder.ErrNoEngine,
		pattern.ErrPatternInvalid,
		pattern.ErrUnsupportedLanguage,
		walk.ErrInvalidRoot,
		walk.ErrUnknownType,
		ErrOutsideRoot,
		mcputils.ErrInvalidArguments,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
