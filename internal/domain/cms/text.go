// Package cms holds the editable content of the public site: testimonials,
// portfolio projects, hero slides and page sections.
package cms

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Locales the site is translated into; French is the reference language
var Locales = []string{"fr", "en", "es", "ar"}

// Text is a translated string keyed by locale
type Text map[string]string

// Get returns the translation for a locale, falling back to French
func (t Text) Get(locale string) string {
	if s := strings.TrimSpace(t[locale]); s != "" {
		return s
	}
	return t["fr"]
}

// French returns the reference translation
func (t Text) French() string {
	return strings.TrimSpace(t["fr"])
}

// clean trims every translation and drops empty or unknown locales
func (t Text) clean() Text {
	if len(t) == 0 {
		return nil
	}
	out := make(Text, len(t))
	for _, l := range Locales {
		if s := strings.TrimSpace(t[l]); s != "" {
			out[l] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9]+`)
	slugRe  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify turns a title into a URL slug, dropping accents
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(plain), "-"), "-")
}

// ValidSlug reports whether s is a well formed slug
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}
