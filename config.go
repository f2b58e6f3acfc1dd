package altupdater

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CSVName         string   `yaml:"csv_name"`
	JSONRoot        string   `yaml:"json_root"`
	ReportsDir      string   `yaml:"reports_dir"`
	BackupDir       string   `yaml:"backup_dir"`
	ExcludeDirs     []string `yaml:"exclude_dirs"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	RewriteSrc      bool     `yaml:"rewrite_src"`
	Backup          bool     `yaml:"backup"`
	DryRun          bool     `yaml:"dry_run"`
	PruneDuplicates bool     `yaml:"prune_duplicates"`
	Workers         int      `yaml:"workers"`
	MaxDepth        int      `yaml:"max_depth"`
	MetricsTextfile string   `yaml:"metrics_textfile"`
}

func DefaultConfig() *Config {
	return &Config{
		CSVName:         "alt-text-output.csv",
		JSONRoot:        "jsonFiles",
		ReportsDir:      "reports",
		BackupDir:       "backup_jsonFiles",
		ExcludeDirs:     []string{".git", "node_modules"},
		PruneDuplicates: true,
		Workers:         4,
		MaxDepth:        DefaultMaxDepth,
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig and then applies
// the ALT_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if v, ok := envBool("ALT_DRY_RUN"); ok {
		c.DryRun = v
	}
	if v, ok := envBool("ALT_BACKUP"); ok {
		c.Backup = v
	}
	if v, ok := envBool("ALT_REWRITE_SRC"); ok {
		c.RewriteSrc = v
	}
	if s, ok := os.LookupEnv("ALT_WORKERS"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			c.Workers = n
		}
	}
}

func envBool(key string) (bool, bool) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, true
	}
	return false, true
}
