package contextbuilder

import (
	"strings"
	"unicode/utf8"

	"medibot/internal/rag/schema"
)

// Separator joins the selected texts in the assembled context; the
// extractive fallback splits on the same boundary.
const Separator = "\n\n"

// displayKeys is the priority order of metadata fields checked for a
// match's display text.
var displayKeys = []string{"preview", "text", "content", "chunk"}

// Build concatenates the matches' display texts, in their given order,
// into a single context string whose contributed text totals at most
// maxChars characters; the separators between blocks are not charged
// against the budget. A candidate that would exceed the remaining budget
// is truncated to fit and ends the assembly; matches without usable text
// are skipped.
func Build(matches []schema.Match, maxChars int) string {
	var parts []string
	total := 0

	for _, m := range matches {
		text := displayText(m.Metadata)
		if text == "" {
			continue
		}
		if total+len(text) > maxChars {
			if truncated := Truncate(text, maxChars-total); truncated != "" {
				parts = append(parts, truncated)
			}
			break
		}
		parts = append(parts, text)
		total += len(text)
	}

	return strings.TrimSpace(strings.Join(parts, Separator))
}

// Truncate shortens s to at most max bytes without splitting a rune, so
// the cut never emits invalid UTF-8.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// displayText extracts the text to show for one match. Metadata is
// usually a field map, but a plain string value is accepted as-is.
func displayText(metadata interface{}) string {
	switch meta := metadata.(type) {
	case map[string]interface{}:
		for _, key := range displayKeys {
			if v, ok := meta[key].(string); ok && v != "" {
				return v
			}
		}
		return ""
	case string:
		return strings.TrimSpace(meta)
	default:
		return ""
	}
}
