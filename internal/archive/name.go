package archive

import (
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns  = regexp.MustCompile(`-+`)
	extSuffix = regexp.MustCompile(`\.[a-z0-9]+$`)
)

// Slugify converts a file name or label to a key-safe forest name.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = extSuffix.ReplaceAllString(s, "")
	s = nonSlug.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
