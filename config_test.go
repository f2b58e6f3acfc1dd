package altupdater_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	altupdater "github.com/thrawn01/alt-updater"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := altupdater.LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, altupdater.DefaultConfig(), config)
	})

	t.Run("YAMLOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "json_root: content\nrewrite_src: true\nworkers: 8\nexclude_patterns:\n  - \"*.bak.json\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		config, err := altupdater.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "content", config.JSONRoot)
		assert.True(t, config.RewriteSrc)
		assert.Equal(t, 8, config.Workers)
		assert.Equal(t, []string{"*.bak.json"}, config.ExcludePatterns)
		assert.Equal(t, "alt-text-output.csv", config.CSVName)
		assert.True(t, config.PruneDuplicates)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("ALT_DRY_RUN", "yes")
		t.Setenv("ALT_BACKUP", "1")
		t.Setenv("ALT_REWRITE_SRC", "TRUE")
		t.Setenv("ALT_WORKERS", "2")

		config, err := altupdater.LoadConfig("")
		require.NoError(t, err)
		assert.True(t, config.DryRun)
		assert.True(t, config.Backup)
		assert.True(t, config.RewriteSrc)
		assert.Equal(t, 2, config.Workers)
	})

	t.Run("EnvironmentFalse", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("dry_run: true\n"), 0644))
		t.Setenv("ALT_DRY_RUN", "0")

		config, err := altupdater.LoadConfig(path)
		require.NoError(t, err)
		assert.False(t, config.DryRun)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := altupdater.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0644))
		_, err := altupdater.LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	validator := altupdater.NewDefaultValidator()

	tests := []struct {
		name        string
		modify      func(*altupdater.Config)
		expectError bool
	}{
		{name: "Default", modify: func(c *altupdater.Config) {}},
		{name: "ZeroWorkers", modify: func(c *altupdater.Config) { c.Workers = 0 }, expectError: true},
		{name: "ZeroDepth", modify: func(c *altupdater.Config) { c.MaxDepth = 0 }, expectError: true},
		{name: "EmptyJSONRoot", modify: func(c *altupdater.Config) { c.JSONRoot = "" }, expectError: true},
		{name: "EmptyCSVName", modify: func(c *altupdater.Config) { c.CSVName = "" }, expectError: true},
		{name: "BackupWithoutDir", modify: func(c *altupdater.Config) { c.Backup = true; c.BackupDir = "" }, expectError: true},
		{name: "BadPattern", modify: func(c *altupdater.Config) { c.ExcludePatterns = []string{"[a-"} }, expectError: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := altupdater.DefaultConfig()
			test.modify(config)
			err := validator.ValidateConfig(config)
			if test.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, validator.ValidateConfig(nil))
}

func TestValidatePath(t *testing.T) {
	validator := altupdater.NewDefaultValidator()

	assert.NoError(t, validator.ValidatePath(t.TempDir()))
	assert.Error(t, validator.ValidatePath(""))
	assert.Error(t, validator.ValidatePath("relative/path"))
}
