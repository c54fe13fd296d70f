package schema

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	whitespace       = regexp.MustCompile(`\s+`)
	nonWord          = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashes           = regexp.MustCompile(`-{2,}`)
)

// fallbackSlug is used when nothing of a name survives slugification.
const fallbackSlug = "app"

// IsValidProjectID reports whether s is safe as a directory and package name.
func IsValidProjectID(s string) bool {
	return projectIDPattern.MatchString(s)
}

// Slugify derives a project id from a display name. The result always
// satisfies IsValidProjectID.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	out := strings.ToLower(folded)
	out = whitespace.ReplaceAllString(out, "-")
	out = nonWord.ReplaceAllString(out, "")
	out = dashes.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		return fallbackSlug
	}
	return out
}

// IsValidURL reports whether s is an absolute URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
