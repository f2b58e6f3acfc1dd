package altupdater

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Scanner interface {
	ScanDirectory(ctx context.Context, rootPath string) iter.Seq2[Document, error]
	ScanFile(ctx context.Context, rootPath, filePath string) (Document, error)
	ListFiles(ctx context.Context, rootPath string) ([]string, error)
}

type FilesystemScanner struct {
	config *Config
}

func NewFilesystemScanner(config *Config) *FilesystemScanner {
	return &FilesystemScanner{config: config}
}

// ScanDirectory yields every JSON document under rootPath in lexical order.
// A file that cannot be read is yielded with its path and the error, and the
// walk goes on. A failed walk or a cancelled context ends the sequence with
// an empty Document.
func (s *FilesystemScanner) ScanDirectory(ctx context.Context, rootPath string) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		files, err := s.ListFiles(ctx, rootPath)
		if err != nil {
			yield(Document{}, err)
			return
		}

		for _, path := range files {
			if ctx.Err() != nil {
				yield(Document{}, ctx.Err())
				return
			}
			doc, err := s.ScanFile(ctx, rootPath, path)
			if !yield(doc, err) {
				return
			}
		}
	}
}

// ListFiles returns the paths of all JSON files under rootPath that are not
// excluded by configuration.
func (s *FilesystemScanner) ListFiles(ctx context.Context, rootPath string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(rootPath, path)
		if d.IsDir() {
			if path != rootPath && s.isExcludedDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		for _, pattern := range s.config.ExcludePatterns {
			if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", rootPath, err)
	}

	return files, nil
}

func (s *FilesystemScanner) isExcludedDir(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		for _, exclude := range s.config.ExcludeDirs {
			if part == exclude {
				return true
			}
		}
	}
	return false
}

func (s *FilesystemScanner) ScanFile(ctx context.Context, rootPath, filePath string) (Document, error) {
	doc := Document{Path: filePath, RelPath: filePath}
	if rel, err := filepath.Rel(rootPath, filePath); err == nil {
		doc.RelPath = filepath.ToSlash(rel)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return doc, err
	}

	doc.Content, err = DecodeText(content)
	if err != nil {
		return doc, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}
	return doc, nil
}

// DecodeText returns content as UTF-8. Input that is not valid UTF-8 is
// treated as ISO-8859-1. A leading byte order mark is dropped.
func DecodeText(content []byte) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return content, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(content)
}
