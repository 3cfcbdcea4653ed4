package photos

import (
	"path"
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen. Leading and trailing hyphens are dropped,
// so input without letters or digits yields ""
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// SanitizeBaseName turns an uploaded file name into the name part of a
// stored photo: directory and extension stripped, then slugified
func SanitizeBaseName(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if slug := Slugify(base); slug != "" {
		return slug
	}
	return "photo"
}
