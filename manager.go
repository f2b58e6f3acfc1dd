package altupdater

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultFilePermissions = 0644

type Updater interface {
	Run(ctx context.Context, params RunParams) (*RunResult, error)
	Resolve(ctx context.Context, csvPath string, sources []string) ([]ResolveResult, error)
	MappingStats(ctx context.Context, csvPath string) (*IndexStats, error)
}

type DefaultUpdater struct {
	scanner   Scanner
	validator Validator
	config    *Config
	logger    *zap.Logger
	metrics   *Metrics
	writeFile func(name string, data []byte, perm os.FileMode) error
}

func NewDefaultUpdater(config *Config, logger *zap.Logger) (*DefaultUpdater, error) {
	validator := NewDefaultValidator()
	if err := validator.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &DefaultUpdater{
		scanner:   NewFilesystemScanner(config),
		validator: validator,
		config:    config,
		logger:    logger,
		metrics:   NewMetrics(),
		writeFile: os.WriteFile,
	}, nil
}

func (m *DefaultUpdater) Metrics() *Metrics {
	return m.metrics
}

// Run loads the mapping once and rewrites every JSON document under the JSON
// root. Documents are processed concurrently and independently; a failure on
// one document is recorded in the result and does not stop the others. Only a
// missing mapping, an unreadable root or cancellation abort the run.
func (m *DefaultUpdater) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	start := time.Now()
	defer func() { m.metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	if err := m.validator.ValidatePath(params.JSONRoot); err != nil {
		return nil, fmt.Errorf("invalid JSON root: %w", err)
	}

	index, err := m.loadIndex(params.CSVPath)
	if err != nil {
		return nil, err
	}
	m.metrics.MappingRows.Set(float64(index.Alts()))

	log := m.logger.With(zap.String("json_root", params.JSONRoot))
	log.Info("loaded alt text mapping",
		zap.String("csv", params.CSVPath),
		zap.String("mode", index.Mode()),
		zap.Int("alts", index.Alts()))

	result := &RunResult{
		RunID:         uuid.NewString(),
		CSVPath:       params.CSVPath,
		JSONRoot:      params.JSONRoot,
		Mode:          index.Mode(),
		Alts:          index.Alts(),
		RewriteSrc:    params.RewriteSrc,
		DryRun:        params.DryRun,
		ModifiedFiles: []string{},
	}

	rewriter := &Rewriter{
		Index:      index,
		RewriteSrc: params.RewriteSrc,
		MaxDepth:   m.config.MaxDepth,
	}

	backup := params.Backup && !params.DryRun
	backupDir := m.backupDir(params.JSONRoot)
	var backedUp int

	// Documents are read in order by the scanner and rewritten concurrently.
	var fileResults []*FileResult
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	for doc, scanErr := range m.scanner.ScanDirectory(gctx, params.JSONRoot) {
		if doc.Path == "" {
			_ = g.Wait()
			return nil, fmt.Errorf("run interrupted: %w", scanErr)
		}

		if backup && scanErr == nil {
			if berr := backupFile(params.JSONRoot, backupDir, doc.Path); berr != nil {
				m.logger.Warn("backup failed", zap.String("file", doc.Path), zap.Error(berr))
				result.Errors = append(result.Errors, fmt.Sprintf("%s: backup failed: %v", doc.Path, berr))
			} else {
				backedUp++
			}
		}

		fr := &FileResult{Path: doc.Path}
		fileResults = append(fileResults, fr)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			*fr = m.processFile(rewriter, params, doc, scanErr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}
	if backup {
		log.Info("backed up documents", zap.String("backup_dir", backupDir), zap.Int("files", backedUp))
	}

	result.TotalFiles = len(fileResults)
	result.Files = make([]FileResult, 0, len(fileResults))
	for _, fr := range fileResults {
		result.Files = append(result.Files, *fr)
	}
	for _, fr := range result.Files {
		if fr.Error != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", fr.Path, fr.Error))
		}
		if fr.Changed {
			result.ChangedFiles++
			result.ModifiedFiles = append(result.ModifiedFiles, fr.Path)
		}
	}

	log.Info("alt text run complete",
		zap.String("run_id", result.RunID),
		zap.Int("scanned", result.TotalFiles),
		zap.Int("changed", result.ChangedFiles),
		zap.Int("updates", len(result.Updates())),
		zap.Bool("dry_run", params.DryRun),
		zap.Bool("rewrite_src", params.RewriteSrc))

	if params.ReportsDir != "" {
		summaryPath, reportPath, err := WriteReports(params.ReportsDir, result)
		if err != nil {
			log.Warn("could not write reports", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
		} else {
			log.Debug("reports written", zap.String("summary", summaryPath), zap.String("report", reportPath))
		}
	}

	if m.config.MetricsTextfile != "" {
		if err := m.metrics.WriteTextfile(m.config.MetricsTextfile); err != nil {
			log.Warn("could not write metrics textfile", zap.Error(err))
		}
	}

	return result, nil
}

func (m *DefaultUpdater) processFile(rewriter *Rewriter, params RunParams, doc Document, readErr error) FileResult {
	fr := FileResult{Path: doc.Path}
	m.metrics.FilesScanned.Inc()
	log := m.logger.With(zap.String("file", doc.Path))

	if readErr != nil {
		log.Warn("skipping unreadable file", zap.Error(readErr))
		m.metrics.FilesSkipped.WithLabelValues("read").Inc()
		fr.Skipped = "read"
		fr.Error = readErr.Error()
		return fr
	}

	data, err := DecodeDocument(doc.Content)
	if err != nil {
		log.Warn("skipping non-JSON or invalid JSON", zap.Error(err))
		m.metrics.FilesSkipped.WithLabelValues("decode").Inc()
		fr.Skipped = "decode"
		return fr
	}

	res := rewriter.Rewrite(data, doc.Path)
	if res.DepthExceeded {
		log.Warn("document nesting exceeds max depth; deeper nodes left untouched",
			zap.Int("max_depth", rewriter.MaxDepth))
		fr.DepthExceeded = true
	}

	value, changed := res.Value, res.Changed
	if m.config.PruneDuplicates {
		var pruned bool
		if value, pruned = PruneDuplicateShapes(value); pruned {
			m.metrics.DocumentsPruned.Inc()
			fr.Pruned = true
			changed = true
		}
	}

	if !changed {
		return fr
	}

	if !params.DryRun {
		out, err := EncodeDocument(value)
		if err == nil {
			err = m.writeFile(doc.Path, out, DefaultFilePermissions)
		}
		if err != nil {
			// Updates are only reported for documents that were written.
			log.Error("failed to write document", zap.Error(err))
			m.metrics.FilesSkipped.WithLabelValues("write").Inc()
			fr.Skipped = "write"
			fr.Error = err.Error()
			return fr
		}
	}

	fr.Updates = dedupeUpdates(res.Updates)
	m.metrics.observeUpdates(fr.Updates)
	m.metrics.FilesChanged.Inc()
	log.Debug("document updated", zap.Int("updates", len(fr.Updates)), zap.Bool("dry_run", params.DryRun))
	fr.Changed = true
	return fr
}

// backupDir resolves the configured backup directory; relative paths are
// taken from the parent of the JSON root.
func (m *DefaultUpdater) backupDir(jsonRoot string) string {
	if filepath.IsAbs(m.config.BackupDir) {
		return m.config.BackupDir
	}
	return filepath.Join(filepath.Dir(jsonRoot), m.config.BackupDir)
}

// backupFile copies path into backupDir, keeping its location relative to
// the JSON root.
func backupFile(jsonRoot, backupDir, path string) error {
	rel, err := filepath.Rel(jsonRoot, path)
	if err != nil {
		return err
	}
	return copyFile(path, filepath.Join(backupDir, rel))
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (m *DefaultUpdater) Resolve(ctx context.Context, csvPath string, sources []string) ([]ResolveResult, error) {
	index, err := m.loadIndex(csvPath)
	if err != nil {
		return nil, err
	}

	results := make([]ResolveResult, 0, len(sources))
	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		alt, table := index.ResolveWithTable(source)
		r := ResolveResult{
			Source:   source,
			Alt:      alt,
			Table:    table.String(),
			Resolved: alt != "",
		}
		if entry, ok := index.RewriteFor(NormalizePath(source)); ok {
			r.Rewrite = entry.NewPath
		}
		results = append(results, r)
	}

	return results, nil
}

func (m *DefaultUpdater) MappingStats(ctx context.Context, csvPath string) (*IndexStats, error) {
	index, err := m.loadIndex(csvPath)
	if err != nil {
		return nil, err
	}
	stats := index.Stats()
	return &stats, nil
}

func (m *DefaultUpdater) loadIndex(csvPath string) (*Index, error) {
	if csvPath == "" {
		return nil, fmt.Errorf("mapping CSV path cannot be empty")
	}

	rows, err := LoadMappingFile(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %s: %w", csvPath, err)
	}
	return BuildIndex(rows), nil
}

// dedupeUpdates drops repeated (old src, alt, new src) entries while keeping
// the first occurrence order.
func dedupeUpdates(updates []Update) []Update {
	type key struct{ oldSrc, alt, newSrc string }
	seen := make(map[key]bool, len(updates))

	var out []Update
	for _, u := range updates {
		k := key{u.OldSrc, u.Alt, u.NewSrc}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, u)
	}
	return out
}
