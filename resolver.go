package altupdater

// matchKeys are the derived keys a source string is looked up under.
type matchKeys struct {
	path     string
	basename string
	slug     string
}

func keysFor(source string) matchKeys {
	b := basenameKey(source)
	return matchKeys{
		path:     NormalizePath(source),
		basename: b,
		slug:     Slug(b),
	}
}

// Resolve returns the alt text for source, or an empty string when no table
// matches.
func (idx *Index) Resolve(source string) string {
	alt, _ := idx.ResolveWithTable(source)
	return alt
}

// ResolveWithTable resolves source through the fixed cascade original path,
// original basename, path, basename, slug and reports which table matched.
// Every step is an exact lookup; the only fuzziness comes from the derived
// keys.
func (idx *Index) ResolveWithTable(source string) (string, Table) {
	if source == "" {
		return "", TableNone
	}
	k := keysFor(source)

	cascade := []struct {
		table Table
		key   string
	}{
		{TableOriginalPath, k.path},
		{TableOriginalBasename, k.basename},
		{TablePath, k.path},
		{TableBasename, k.basename},
		{TableSlug, k.slug},
	}

	for _, step := range cascade {
		if step.key == "" {
			continue
		}
		if alt, ok := idx.Lookup(step.table, step.key); ok {
			return alt, step.table
		}
	}
	return "", TableNone
}

// knows reports whether any key derived from source is present in the index.
func (idx *Index) knows(source string) bool {
	k := keysFor(source)
	if _, ok := idx.rewrites[k.path]; ok {
		return true
	}
	if _, ok := idx.byOrigPath[k.path]; ok {
		return true
	}
	if _, ok := idx.byPath[k.path]; ok {
		return true
	}
	if _, ok := idx.byOrigBasename[k.basename]; ok {
		return true
	}
	if _, ok := idx.byBasename[k.basename]; ok {
		return true
	}
	_, ok := idx.bySlug[k.slug]
	return ok
}
