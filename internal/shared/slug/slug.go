package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// FromName is the server-side normalization: every non-alphanumeric run
// becomes one hyphen and an empty result falls back to "product".
func FromName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "product"
	}
	return s
}

// FromTitle derives the slug for a locally synthesized record: lowercase,
// trim, whitespace runs to single hyphens, then strip anything outside
// [a-z0-9-].
func FromTitle(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}
