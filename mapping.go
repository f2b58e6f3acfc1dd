package altupdater

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadMappingFile reads a mapping CSV and returns its non-blank rows.
func LoadMappingFile(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapping file not found: %w", err)
	}

	content, err = DecodeText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mapping file: %w", err)
	}

	return ParseMapping(content)
}

// ParseMapping parses CSV content into rows, dropping rows whose cells are
// all blank. Rows may have different lengths.
func ParseMapping(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed mapping CSV: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// FindMappingFile locates the mapping CSV inside dir: defaultName when it
// exists, otherwise the only CSV in dir, otherwise the first CSV whose name
// mentions "alt". When nothing matches the default path is returned so the
// caller reports it as missing.
func FindMappingFile(dir, defaultName string) string {
	defaultPath := filepath.Join(dir, defaultName)
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	csvs, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(csvs) == 0 {
		return defaultPath
	}
	sort.Strings(csvs)

	if len(csvs) == 1 {
		return csvs[0]
	}
	for _, c := range csvs {
		if strings.Contains(strings.ToLower(filepath.Base(c)), "alt") {
			return c
		}
	}
	return defaultPath
}
