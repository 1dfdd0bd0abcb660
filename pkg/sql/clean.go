// Package sql provides sanitization, validation, and formatting for
// model-generated SQL.
package sql

import (
	"regexp"
	"strings"
)

var (
	// Matches a leading fenced-code marker with an optional language tag,
	// e.g. ```sql or ```SQL or a bare ```.
	leadingFencePattern = regexp.MustCompile("(?i)^\\s*```[a-z0-9]*[ \\t]*\\r?\\n?")

	// Matches a closing fence marker and anything after it.
	closingFencePattern = regexp.MustCompile("(?s)```.*$")

	// Matches a leading bare "sql" label token some models emit before the
	// statement itself.
	leadingLabelPattern = regexp.MustCompile(`(?i)^\s*sql\b[ \t]*\r?\n?`)
)

// Clean strips formatting artifacts from a raw completion, leaving the bare
// SQL candidate. The transforms run in a fixed order: leading fence (with
// optional language tag), closing fence, leading "sql" label, trailing
// statement terminators, surrounding whitespace.
//
// Clean is idempotent: applying it to its own output is a no-op.
func Clean(raw string) string {
	cleaned := leadingFencePattern.ReplaceAllString(raw, "")
	cleaned = closingFencePattern.ReplaceAllString(cleaned, "")
	cleaned = leadingLabelPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimRight(cleaned, "; \t\n\r")
	return strings.TrimSpace(cleaned)
}
