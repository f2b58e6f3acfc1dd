package altupdater

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Parameter structures for MCP tools
type UpdateAltTextParams struct {
	CSVPath    string `json:"csv_path"`
	JSONRoot   string `json:"json_root"`
	ReportsDir string `json:"reports_dir,omitempty"`
	DryRun     bool   `json:"dry_run"`
	Backup     bool   `json:"backup"`
	RewriteSrc bool   `json:"rewrite_src"`
	MaxFiles   *int   `json:"max_files,omitempty"`
}

type ResolveAltParams struct {
	CSVPath string   `json:"csv_path"`
	Sources []string `json:"sources"`
}

type MappingStatsParams struct {
	CSVPath string `json:"csv_path"`
}

// Tool handler functions
func UpdateAltTextTool(ctx context.Context, req *mcp.CallToolRequest, args UpdateAltTextParams, updater Updater) (*mcp.CallToolResult, any, error) {
	if !filepath.IsAbs(args.CSVPath) {
		return nil, nil, fmt.Errorf("csv_path must be absolute")
	}

	result, err := updater.Run(ctx, RunParams{
		CSVPath:    args.CSVPath,
		JSONRoot:   args.JSONRoot,
		ReportsDir: args.ReportsDir,
		DryRun:     args.DryRun,
		Backup:     args.Backup,
		RewriteSrc: args.RewriteSrc,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update alt text: %w", err)
	}

	if args.MaxFiles != nil {
		result = limitFileResults(result, *args.MaxFiles)
	}

	return nil, result, nil
}

func ResolveAltTool(ctx context.Context, req *mcp.CallToolRequest, args ResolveAltParams, updater Updater) (*mcp.CallToolResult, any, error) {
	if !filepath.IsAbs(args.CSVPath) {
		return nil, nil, fmt.Errorf("csv_path must be absolute")
	}
	if len(args.Sources) == 0 {
		return nil, nil, fmt.Errorf("sources cannot be empty")
	}

	result, err := updater.Resolve(ctx, args.CSVPath, args.Sources)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve alt text: %w", err)
	}

	return nil, result, nil
}

func MappingStatsTool(ctx context.Context, req *mcp.CallToolRequest, args MappingStatsParams, updater Updater) (*mcp.CallToolResult, any, error) {
	if !filepath.IsAbs(args.CSVPath) {
		return nil, nil, fmt.Errorf("csv_path must be absolute")
	}

	result, err := updater.MappingStats(ctx, args.CSVPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read mapping: %w", err)
	}

	return nil, result, nil
}

// limitFileResults keeps only the first maxFiles changed documents in the
// per-file listing; the counters still describe the whole run.
func limitFileResults(result *RunResult, maxFiles int) *RunResult {
	limited := *result
	limited.Files = nil
	for _, f := range result.Files {
		if len(limited.Files) >= maxFiles {
			break
		}
		if f.Changed {
			limited.Files = append(limited.Files, f)
		}
	}
	if len(limited.ModifiedFiles) > maxFiles {
		limited.ModifiedFiles = limited.ModifiedFiles[:maxFiles]
	}
	return &limited
}

// RunMCPServer starts the MCP server implementation using the official Go SDK
// If transport is nil, it will use stdio transport
func RunMCPServer(configPath string, transport *mcp.InMemoryTransport, logger *zap.Logger) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	updater, err := NewDefaultUpdater(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "alt-updater",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_alt_text",
		Description: "Update image alt text in JSON files from a CSV mapping, optionally rewriting image paths",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args UpdateAltTextParams) (*mcp.CallToolResult, any, error) {
		return UpdateAltTextTool(ctx, req, args, updater)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_alt",
		Description: "Resolve the alt text a CSV mapping assigns to image sources",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ResolveAltParams) (*mcp.CallToolResult, any, error) {
		return ResolveAltTool(ctx, req, args, updater)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mapping_stats",
		Description: "Show how a CSV mapping file was interpreted",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MappingStatsParams) (*mcp.CallToolResult, any, error) {
		return MappingStatsTool(ctx, req, args, updater)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if transport != nil {
		return server.Run(ctx, transport)
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}
