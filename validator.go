package altupdater

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Validator interface {
	ValidatePath(path string) error
	ValidateConfig(config *Config) error
}

type DefaultValidator struct{}

func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

func (v *DefaultValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal")
	}

	return nil
}

func (v *DefaultValidator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if config.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1")
	}

	if config.JSONRoot == "" {
		return fmt.Errorf("json_root cannot be empty")
	}

	if config.CSVName == "" {
		return fmt.Errorf("csv_name cannot be empty")
	}

	if config.Backup && config.BackupDir == "" {
		return fmt.Errorf("backup_dir is required when backup is enabled")
	}

	for _, pattern := range config.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	return nil
}
