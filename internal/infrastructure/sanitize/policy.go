// Package sanitize cleans visitor input with a strict bluemonday policy.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/microcosm-cc/bluemonday"
)

var (
	spaces      = regexp.MustCompile(`[ \t]{2,}`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	lineBreaks  = regexp.MustCompile(`\r\n|\r|\n`)
	phoneFilter = regexp.MustCompile(`[^\d+\s\-()]`)
)

// Policy strips every tag and control character from text
type Policy struct {
	strict *bluemonday.Policy
}

// NewPolicy creates a Policy
func NewPolicy() *Policy {
	return &Policy{strict: bluemonday.StrictPolicy()}
}

// strip removes markup, then restores the entities bluemonday escapes so
// apostrophes and ampersands are stored as typed
func (p *Policy) strip(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return html.UnescapeString(p.strict.Sanitize(s))
}

// Line cleans a single-line value
func (p *Policy) Line(s string) string {
	s = lineBreaks.ReplaceAllString(s, " ")
	s = p.strip(s)
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Block cleans free text, keeping at most one blank line between paragraphs
func (p *Policy) Block(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = p.strip(s)
	s = spaces.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Phone keeps digits, plus sign, spaces, dashes and parentheses
func Phone(s string) string {
	return strings.TrimSpace(phoneFilter.ReplaceAllString(s, ""))
}

// Email lowercases and trims an address
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var _ publicform.Sanitizer = (*Policy)(nil)
