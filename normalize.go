package altupdater

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	schemePattern    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
	extensionPattern = regexp.MustCompile(`\.[a-z0-9]+$`)
	digitPattern     = regexp.MustCompile(`[0-9]`)
	nonLetterPattern = regexp.MustCompile(`[^a-z]+`)
)

// ImageExtensions are the file extensions treated as image references.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// NormalizePath reduces a raw path or URL to a comparable path key. Absolute
// URLs are reduced to their decoded path component; anything else has its
// query and fragment stripped before decoding. Input that cannot be parsed
// is returned unchanged.
func NormalizePath(raw string) string {
	if raw == "" {
		return ""
	}

	if schemePattern.MatchString(raw) {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		return u.Path
	}

	p := raw
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	decoded, err := url.PathUnescape(p)
	if err != nil {
		return raw
	}
	return decoded
}

// Basename returns the final path segment of the normalized form of raw.
func Basename(raw string) string {
	p := NormalizePath(raw)
	segment := p[strings.LastIndex(p, "/")+1:]

	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}

// Slug derives the coarse fuzzy key used as a last resort when matching:
// lower-cased, extension dropped, digits and every other non-letter removed.
func Slug(basename string) string {
	s := strings.ToLower(basename)
	s = extensionPattern.ReplaceAllString(s, "")
	s = digitPattern.ReplaceAllString(s, "")
	return nonLetterPattern.ReplaceAllString(s, "")
}

func IsImagePath(p string) bool {
	p = strings.ToLower(p)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// basenameKey is the lower-cased basename used by the basename tables.
func basenameKey(raw string) string {
	return strings.ToLower(Basename(raw))
}
