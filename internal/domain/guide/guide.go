// Package guide builds the outfit guide document for a category. Rendering
// the document to a file format is left to a renderer.
package guide

import (
	"strings"
	"unicode"

	"github.com/okian/stylepulse/internal/domain/catalog"
)

const (
	titlePrefix = "StylePulse Outfit Guide - "
	titleSuffix = " Look"
	bullet      = "- "
)

// Document is a title followed by ordered lines.
type Document struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Build formats category and items into a Document. It does no I/O.
func Build(category catalog.Category, items []string) Document {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = bullet + item
	}
	return Document{
		Title: titlePrefix + TitleCase(string(category)) + titleSuffix,
		Lines: lines,
	}
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "street-wear" becomes "Street-Wear".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
