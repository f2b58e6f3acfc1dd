package altupdater

import (
	"strings"
)

const (
	ModeEmpty        = "—"
	ModeTwoColumns   = "2 cols"
	ModeThreeColumns = "3 cols"
)

// Table identifies one of the lookup tables of an Index.
type Table int

const (
	TableNone Table = iota
	TableOriginalPath
	TableOriginalBasename
	TablePath
	TableBasename
	TableSlug
)

func (t Table) String() string {
	switch t {
	case TableOriginalPath:
		return "original_path"
	case TableOriginalBasename:
		return "original_basename"
	case TablePath:
		return "path"
	case TableBasename:
		return "basename"
	case TableSlug:
		return "slug"
	default:
		return "none"
	}
}

// RewriteEntry is the target of a source rewrite: the new relative path and
// the alt text that goes with it.
type RewriteEntry struct {
	NewPath string `json:"new_path"`
	Alt     string `json:"alt"`
}

// Index holds every lookup table derived from a mapping file. It is built once
// by BuildIndex and never modified afterwards, so a single Index may be shared
// by any number of concurrent rewrites.
type Index struct {
	byPath         map[string]string
	byBasename     map[string]string
	bySlug         map[string]string
	byOrigPath     map[string]string
	byOrigBasename map[string]string
	rewrites       map[string]RewriteEntry

	mode      string
	alts      int
	hasHeader bool
}

type IndexStats struct {
	Mode              string `json:"mode"`
	Alts              int    `json:"alts"`
	HasHeader         bool   `json:"has_header"`
	Paths             int    `json:"paths"`
	Basenames         int    `json:"basenames"`
	Slugs             int    `json:"slugs"`
	OriginalPaths     int    `json:"original_paths"`
	OriginalBasenames int    `json:"original_basenames"`
	Rewrites          int    `json:"rewrites"`
}

type columnOrder int

const (
	orderUnknown columnOrder = iota
	// cell0 holds the new path, cell2 the original.
	orderNewFirst
	// cell0 holds the original path, cell2 the new one.
	orderOriginalFirst
)

func newIndex() *Index {
	return &Index{
		byPath:         make(map[string]string),
		byBasename:     make(map[string]string),
		bySlug:         make(map[string]string),
		byOrigPath:     make(map[string]string),
		byOrigBasename: make(map[string]string),
		rewrites:       make(map[string]RewriteEntry),
		mode:           ModeEmpty,
	}
}

// BuildIndex builds the lookup tables from already parsed mapping rows.
// Rows may follow the 2-column schema (path, alt) or the 3-column schema
// (new path, alt, original path in either order). Rows that lack a path or
// alt text are skipped. When several rows produce the same key the later row
// wins.
func BuildIndex(rows [][]string) *Index {
	idx := newIndex()
	if len(rows) == 0 {
		return idx
	}
	idx.mode = ModeTwoColumns

	start := 0
	order := orderUnknown
	if isHeaderRow(rows[0]) {
		idx.hasHeader = true
		order = headerOrder(rows[0])
		start = 1
	}

	for _, row := range rows[start:] {
		if len(row) < 2 {
			continue
		}

		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}

		if len(cells) < 3 || cells[2] == "" {
			idx.addTwoColumnRow(cells[0], cells[1])
			continue
		}
		idx.addThreeColumnRow(cells[0], cells[1], cells[2], order)
	}

	return idx
}

func (idx *Index) addTwoColumnRow(rawPath, alt string) {
	if rawPath == "" || alt == "" {
		return
	}
	idx.alts++

	if rel := NormalizePath(rawPath); isPathKey(rel) {
		idx.byPath[rel] = alt
	}
	idx.addNameKeys(rawPath, alt)
}

func (idx *Index) addThreeColumnRow(first, alt, last string, order columnOrder) {
	if order == orderUnknown {
		order = scoreOrder(first, last)
	}

	newRaw, origRaw := first, last
	if order == orderOriginalFirst {
		newRaw, origRaw = last, first
	}

	origPath := NormalizePath(origRaw)
	if alt == "" || origPath == "" {
		return
	}
	idx.alts++
	idx.mode = ModeThreeColumns

	idx.byOrigPath[origPath] = alt
	if ob := basenameKey(origRaw); ob != "" {
		idx.byOrigBasename[ob] = alt
	}

	newPath := NormalizePath(newRaw)
	if newPath != "" {
		idx.rewrites[origPath] = RewriteEntry{NewPath: newPath, Alt: alt}
		if isPathKey(newPath) {
			idx.byPath[newPath] = alt
		}
		idx.addNameKeys(newPath, alt)
		return
	}
	idx.addNameKeys(origRaw, alt)
}

func (idx *Index) addNameKeys(raw, alt string) {
	b := basenameKey(raw)
	if b == "" {
		return
	}
	idx.byBasename[b] = alt
	if sl := Slug(b); sl != "" {
		idx.bySlug[sl] = alt
	}
}

func isPathKey(p string) bool {
	return p != "" && (strings.HasPrefix(p, "/") || IsImagePath(p))
}

func isHeaderRow(row []string) bool {
	if len(row) > 0 {
		first := strings.ToLower(row[0])
		if strings.Contains(first, "path") || strings.Contains(first, "image") {
			return true
		}
	}
	return len(row) > 1 && strings.Contains(strings.ToLower(row[1]), "alt")
}

// headerOrder reads the column roles of a 3-column mapping from its header.
func headerOrder(header []string) columnOrder {
	if len(header) < 3 {
		return orderUnknown
	}
	first := strings.ToLower(strings.TrimSpace(header[0]))
	last := strings.ToLower(strings.TrimSpace(header[2]))

	switch {
	case strings.Contains(first, "new") || strings.Contains(last, "orig"):
		return orderNewFirst
	case strings.Contains(last, "new") || strings.Contains(first, "orig"):
		return orderOriginalFirst
	}
	return orderUnknown
}

// scoreOrder guesses which of two unlabeled cells is the original link. The
// cell that looks more like a legacy CMS URL is the original; on a tie the
// first cell is.
func scoreOrder(first, last string) columnOrder {
	if originScore(last) > originScore(first) {
		return orderNewFirst
	}
	return orderOriginalFirst
}

func originScore(cell string) int {
	lower := strings.ToLower(cell)
	score := 0
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		score += 2
	}
	if strings.Contains(lower, ".ashx") {
		score += 2
	}
	if strings.Contains(cell, "/-/") {
		score++
	}
	if strings.Contains(cell, "?") {
		score++
	}
	return score
}

// Mode reports "3 cols" once any 3-column row contributed, "2 cols" for
// other non-empty input and "—" for empty input.
func (idx *Index) Mode() string {
	return idx.mode
}

// Alts is the number of rows that contributed at least one key.
func (idx *Index) Alts() int {
	return idx.alts
}

func (idx *Index) HasHeader() bool {
	return idx.hasHeader
}

// Lookup performs an exact-key lookup in a single table.
func (idx *Index) Lookup(table Table, key string) (string, bool) {
	var m map[string]string
	switch table {
	case TableOriginalPath:
		m = idx.byOrigPath
	case TableOriginalBasename:
		m = idx.byOrigBasename
	case TablePath:
		m = idx.byPath
	case TableBasename:
		m = idx.byBasename
	case TableSlug:
		m = idx.bySlug
	default:
		return "", false
	}
	alt, ok := m[key]
	return alt, ok
}

// RewriteFor returns the rewrite target recorded for a normalized original path.
func (idx *Index) RewriteFor(origPath string) (RewriteEntry, bool) {
	entry, ok := idx.rewrites[origPath]
	return entry, ok
}

func (idx *Index) Stats() IndexStats {
	return IndexStats{
		Mode:              idx.mode,
		Alts:              idx.alts,
		HasHeader:         idx.hasHeader,
		Paths:             len(idx.byPath),
		Basenames:         len(idx.byBasename),
		Slugs:             len(idx.bySlug),
		OriginalPaths:     len(idx.byOrigPath),
		OriginalBasenames: len(idx.byOrigBasename),
		Rewrites:          len(idx.rewrites),
	}
}
