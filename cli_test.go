package altupdater_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	altupdater "github.com/thrawn01/alt-updater"
	"go.uber.org/zap"
)

func runCmd(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := altupdater.RunCmd(args, &altupdater.RunCmdOptions{
		Stdout: &stdout,
		Stderr: &stderr,
		Logger: zap.NewNop(),
	})
	return stdout.String(), err
}

func TestCLIIntegration(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{
			name: "Help",
			args: []string{"alt-updater", "-h"},
		},
		{
			name: "NoCommand",
			args: []string{"alt-updater"},
		},
		{
			name: "UpdateDryRun",
			args: []string{"alt-updater", "update", "--dir=" + f.dir, "--dry-run", "--json"},
		},
		{
			name: "ResolveCommand",
			args: []string{"alt-updater", "resolve", "--csv=" + f.csvPath, "--sources=/img/hero.jpg,team.png", "--json"},
		},
		{
			name: "StatsCommand",
			args: []string{"alt-updater", "stats", "--dir=" + f.dir},
		},
		{
			name: "UpdateCommand",
			args: []string{"alt-updater", "update", "--dir=" + f.dir, "--rewrite-src"},
		},
		{
			name:        "InvalidCommand",
			args:        []string{"alt-updater", "invalid"},
			expectError: true,
		},
		{
			name:        "MissingSources",
			args:        []string{"alt-updater", "resolve", "--csv=" + f.csvPath},
			expectError: true,
		},
		{
			name:        "MissingMapping",
			args:        []string{"alt-updater", "stats", "--csv=" + filepath.Join(f.dir, "missing.csv")},
			expectError: true,
		},
		{
			name:        "InvalidRoot",
			args:        []string{"alt-updater", "update", "--csv=" + f.csvPath, "--root=/nonexistent", "--json"},
			expectError: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := runCmd(test.args...)
			if test.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCLIGlobalFlags(t *testing.T) {
	f := newFixture(t)

	t.Run("DryRunFlag", func(t *testing.T) {
		out, err := runCmd("alt-updater", "--dry-run", "update", "--dir="+f.dir)
		require.NoError(t, err)
		assert.Contains(t, out, "DRY RUN MODE")
		assert.Contains(t, out, "Updated:    4 files")

		raw, err := os.ReadFile(filepath.Join(f.jsonRoot, "home.json"))
		require.NoError(t, err)
		assert.Equal(t, homeJSON, string(raw))
	})

	t.Run("VerboseFlag", func(t *testing.T) {
		out, err := runCmd("alt-updater", "-v", "--dry-run", "update", "--dir="+f.dir, "--rewrite-src")
		require.NoError(t, err)
		assert.Contains(t, out, `"Company logo" (src: /photos/logo.png)`)
		assert.Contains(t, out, "Rewrite:    ON")
	})
}

func TestCLIOutput(t *testing.T) {
	f := newFixture(t)

	t.Run("UpdateJSON", func(t *testing.T) {
		out, err := runCmd("alt-updater", "update", "--dir="+f.dir, "--json")
		require.NoError(t, err)

		var result altupdater.RunResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 4, result.ChangedFiles)
		assert.Equal(t, f.jsonRoot, result.JSONRoot)

		_, err = os.Stat(filepath.Join(f.dir, "reports", altupdater.SummaryFileName))
		assert.NoError(t, err)
	})

	t.Run("ResolveText", func(t *testing.T) {
		out, err := runCmd("alt-updater", "resolve", "--csv="+f.csvPath,
			"--sources=https://www.example.com/-/media/images/logo.ashx,/img/none.jpg")
		require.NoError(t, err)
		assert.Contains(t, out, `"Company logo" (via original_path)`)
		assert.Contains(t, out, "rewrite to /photos/logo.png")
		assert.Contains(t, out, "/img/none.jpg: no match")
	})

	t.Run("StatsJSON", func(t *testing.T) {
		out, err := runCmd("alt-updater", "stats", "--csv="+f.csvPath, "--json")
		require.NoError(t, err)

		var stats altupdater.IndexStats
		require.NoError(t, json.Unmarshal([]byte(out), &stats))
		assert.Equal(t, altupdater.ModeThreeColumns, stats.Mode)
		assert.Equal(t, 3, stats.Alts)
	})
}

func TestMCPServerCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverDone := make(chan error, 1)
	go func() {
		options := &altupdater.RunCmdOptions{
			MCPTransport: serverTransport,
			Logger:       zap.NewNop(),
		}
		serverDone <- altupdater.RunCmd([]string{"alt-updater", "-mcp"}, options)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() {
		_ = session.Close()
	}()

	require.NoError(t, session.Ping(ctx, nil))

	t.Run("ToolDiscovery", func(t *testing.T) {
		tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
		require.NoError(t, err)

		expectedTools := map[string]string{
			"update_alt_text": "Update image alt text in JSON files from a CSV mapping, optionally rewriting image paths",
			"resolve_alt":     "Resolve the alt text a CSV mapping assigns to image sources",
			"mapping_stats":   "Show how a CSV mapping file was interpreted",
		}

		foundTools := make(map[string]bool)
		for _, tool := range tools.Tools {
			if expectedDesc, expected := expectedTools[tool.Name]; expected {
				foundTools[tool.Name] = true
				assert.Equal(t, expectedDesc, tool.Description)
			} else {
				assert.Failf(t, "Unexpected tool found", "tool: %s", tool.Name)
			}
		}
		for toolName := range expectedTools {
			assert.True(t, foundTools[toolName])
		}
		assert.Len(t, tools.Tools, 3)
	})

	t.Run("MappingStatsTool", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "mapping_stats",
			Arguments: map[string]any{"csv_path": f.csvPath},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
	})
}
