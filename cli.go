package altupdater

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunCmdOptions contains options for customizing RunCmd behavior
type RunCmdOptions struct {
	// MCPTransport allows providing a custom transport for MCP server (used for testing)
	MCPTransport *mcp.InMemoryTransport
	// Stdout writer for normal output (defaults to os.Stdout)
	Stdout io.Writer
	// Stderr writer for error and log output (defaults to os.Stderr)
	Stderr io.Writer
	// Logger overrides the logger built from Stderr
	Logger *zap.Logger
}

// commandContext holds runtime context for command execution
type commandContext struct {
	stdout  io.Writer
	stderr  io.Writer
	config  *Config
	logger  *zap.Logger
	updater Updater
}

func RunCmd(args []string, options *RunCmdOptions) error {
	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if options != nil {
		if options.Stdout != nil {
			stdout = options.Stdout
		}
		if options.Stderr != nil {
			stderr = options.Stderr
		}
	}

	if len(args) < 1 {
		return ShowHelp(stdout)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		help       = fs.Bool("h", false, "Show help")
		mcpOption  = fs.Bool("mcp", false, "Run as MCP server")
		verbose    = fs.Bool("v", false, "Verbose output")
		dryRun     = fs.Bool("dry-run", false, "Show what would be changed without making changes")
		configFile = fs.String("config", "", "Path to configuration file")
	)

	if len(args) > 1 {
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
	}

	if *help {
		return ShowHelp(stdout)
	}

	logger := newLogger(stderr, *verbose)
	if options != nil && options.Logger != nil {
		logger = options.Logger
	}

	if *mcpOption {
		var transport *mcp.InMemoryTransport
		if options != nil && options.MCPTransport != nil {
			transport = options.MCPTransport
		}
		return RunMCPServer(*configFile, transport, logger)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return ShowHelp(stdout)
	}

	config, err := LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dryRun {
		config.DryRun = true
	}

	updater, err := NewDefaultUpdater(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	cmdCtx := &commandContext{
		stdout:  stdout,
		stderr:  stderr,
		config:  config,
		logger:  logger,
		updater: updater,
	}

	ctx := context.Background()
	switch remaining[0] {
	case "update":
		return updateCommand(ctx, cmdCtx, remaining[1:], *verbose)
	case "resolve":
		return resolveCommand(ctx, cmdCtx, remaining[1:])
	case "stats":
		return statsCommand(ctx, cmdCtx, remaining[1:])
	default:
		return fmt.Errorf("unknown command: %s", remaining[0])
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

func ShowHelp(w io.Writer) error {
	help := `Alt Text Updater - Bulk-update image alt text in JSON documents from a CSV mapping

Usage:
  alt-updater [OPTIONS] COMMAND [ARGS...]
  alt-updater -mcp              Run as MCP server

Options:
  -h, --help           Show this help message
  -v, --verbose        Enable verbose output
  --dry-run            Preview changes without modifying files
  --config FILE        Path to configuration file
  -mcp                 Run as MCP server

Commands:
  update       Update alt text (and optionally image paths) in JSON files
  resolve      Show the alt text a mapping resolves for image sources
  stats        Show how a mapping file was interpreted

CSV formats:
  2 columns: image path/url/filename, alt
  3 columns: new relative path, alt, original link (either order of paths)

Environment:
  ALT_DRY_RUN=1        Preview only, do not write
  ALT_BACKUP=1         Copy JSON files to the backup directory before saving
  ALT_REWRITE_SRC=1    Rewrite image sources matching an original link
  ALT_WORKERS=N        Number of documents processed concurrently

Examples:
  alt-updater update --dir="/path/to/project"
  alt-updater update --csv="alt.csv" --root="/path/to/jsonFiles" --rewrite-src --backup
  alt-updater --dry-run update --dir="/path/to/project" --json
  alt-updater resolve --csv="alt.csv" --sources="/img/a.jpg,team.png"
  alt-updater stats --csv="alt.csv"
  alt-updater -mcp --config="/path/to/config.yaml"
`
	_, _ = fmt.Fprint(w, help)
	return nil
}

// resolvePaths fills in the mapping and JSON root locations relative to dir
// and makes every path absolute.
func resolvePaths(config *Config, dir, csvPath, root, reports string) (string, string, string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	if csvPath == "" {
		csvPath = FindMappingFile(dir, config.CSVName)
	}
	if root == "" {
		root = filepath.Join(dir, config.JSONRoot)
	}
	if reports == "" && config.ReportsDir != "" {
		reports = filepath.Join(dir, config.ReportsDir)
	}

	var err error
	if csvPath, err = filepath.Abs(csvPath); err != nil {
		return "", "", "", err
	}
	if root, err = filepath.Abs(root); err != nil {
		return "", "", "", err
	}
	if reports != "" {
		if reports, err = filepath.Abs(reports); err != nil {
			return "", "", "", err
		}
	}
	return csvPath, root, reports, nil
}

func updateCommand(ctx context.Context, cmdCtx *commandContext, args []string, verbose bool) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	dir := fs.String("dir", "", "Base directory holding the CSV and JSON folder (defaults to current directory)")
	csvPath := fs.String("csv", "", "Path to the mapping CSV")
	root := fs.String("root", "", "Root directory of the JSON files")
	reports := fs.String("reports", "", "Directory for the summary and CSV report")
	rewriteSrc := fs.Bool("rewrite-src", cmdCtx.config.RewriteSrc, "Rewrite image sources found in the mapping's original links")
	backup := fs.Bool("backup", cmdCtx.config.Backup, "Back up JSON files before writing")
	localDryRun := fs.Bool("dry-run", false, "Show what would be changed without making changes")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	csvAbs, rootAbs, reportsAbs, err := resolvePaths(cmdCtx.config, *dir, *csvPath, *root, *reports)
	if err != nil {
		return err
	}

	dryRun := cmdCtx.config.DryRun || *localDryRun
	if dryRun && !*jsonOutput {
		_, _ = fmt.Fprintln(cmdCtx.stdout, "DRY RUN MODE - No files will be modified")
	}

	result, err := cmdCtx.updater.Run(ctx, RunParams{
		CSVPath:    csvAbs,
		JSONRoot:   rootAbs,
		ReportsDir: reportsAbs,
		DryRun:     dryRun,
		Backup:     *backup,
		RewriteSrc: *rewriteSrc,
	})
	if err != nil {
		return err
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(result)
	}

	onOff := "OFF"
	if result.RewriteSrc {
		onOff = "ON"
	}

	_, _ = fmt.Fprintln(cmdCtx.stdout, "Alt-text Updater")
	_, _ = fmt.Fprintln(cmdCtx.stdout, "----------------")
	_, _ = fmt.Fprintf(cmdCtx.stdout, "CSV:        %s (%s, %d alts)\n", filepath.Base(result.CSVPath), result.Mode, result.Alts)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "JSON root:  %s\n", result.JSONRoot)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "Scanned:    %d JSON files\n", result.TotalFiles)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "Updated:    %d files\n", result.ChangedFiles)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "Rewrite:    %s\n", onOff)
	if reportsAbs != "" {
		_, _ = fmt.Fprintf(cmdCtx.stdout, "Report:     %s\n", filepath.Join(reportsAbs, ReportFileName))
	}

	if verbose {
		for _, u := range result.Updates() {
			newSrc := "none"
			if u.Rewritten() {
				newSrc = u.NewSrc
			}
			_, _ = fmt.Fprintf(cmdCtx.stdout, "  %s: %s -> %q (src: %s)\n", u.File, u.OldSrc, u.Alt, newSrc)
		}
	}

	if len(result.Errors) > 0 {
		_, _ = fmt.Fprintf(cmdCtx.stdout, "Errors: %d\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			_, _ = fmt.Fprintf(cmdCtx.stdout, "  %s\n", errMsg)
		}
		return fmt.Errorf("completed with %d errors", len(result.Errors))
	}

	return nil
}

func resolveCommand(ctx context.Context, cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	dir := fs.String("dir", "", "Base directory holding the CSV (defaults to current directory)")
	csvPath := fs.String("csv", "", "Path to the mapping CSV")
	sources := fs.String("sources", "", "Comma-separated image sources to resolve")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	sourceList := parseList(*sources)
	if len(sourceList) == 0 {
		return fmt.Errorf("--sources is required")
	}

	csvAbs, _, _, err := resolvePaths(cmdCtx.config, *dir, *csvPath, "", "")
	if err != nil {
		return err
	}

	results, err := cmdCtx.updater.Resolve(ctx, csvAbs, sourceList)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(results)
	}

	for _, r := range results {
		if !r.Resolved {
			_, _ = fmt.Fprintf(cmdCtx.stdout, "✗ %s: no match\n", r.Source)
			continue
		}
		_, _ = fmt.Fprintf(cmdCtx.stdout, "✓ %s: %q (via %s)\n", r.Source, r.Alt, r.Table)
		if r.Rewrite != "" {
			_, _ = fmt.Fprintf(cmdCtx.stdout, "  → rewrite to %s\n", r.Rewrite)
		}
	}

	return nil
}

func statsCommand(ctx context.Context, cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	dir := fs.String("dir", "", "Base directory holding the CSV (defaults to current directory)")
	csvPath := fs.String("csv", "", "Path to the mapping CSV")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	csvAbs, _, _, err := resolvePaths(cmdCtx.config, *dir, *csvPath, "", "")
	if err != nil {
		return err
	}

	stats, err := cmdCtx.updater.MappingStats(ctx, csvAbs)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(stats)
	}

	_, _ = fmt.Fprintf(cmdCtx.stdout, "\n%s:\n", csvAbs)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Mode:               %s\n", stats.Mode)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Alts:               %d\n", stats.Alts)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Header:             %t\n", stats.HasHeader)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Paths:              %d\n", stats.Paths)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Basenames:          %d\n", stats.Basenames)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Slugs:              %d\n", stats.Slugs)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Original paths:     %d\n", stats.OriginalPaths)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Original basenames: %d\n", stats.OriginalBasenames)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "  Rewrites:           %d\n", stats.Rewrites)

	return nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
