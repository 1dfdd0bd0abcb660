package sql

import (
	"regexp"
	"strings"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
)

// denySet lists keywords that must never appear in an executable statement.
// The scan is a tripwire on top of the statement-shape allow-list below: a
// keyword match anywhere in the candidate rejects it, even inside comments.
var denySet = map[string]struct{}{
	"DROP":     {},
	"DELETE":   {},
	"TRUNCATE": {},
	"ALTER":    {},
	"UPDATE":   {},
	"CREATE":   {},
	"GRANT":    {},
	"REVOKE":   {},
}

// wordTokenPattern splits the candidate into keyword-shaped tokens.
var wordTokenPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// modifyingCTEPattern matches CTEs that contain data-modifying operations,
// e.g. WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted.
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE|MERGE)\b`)

// ValidateReadOnly checks that a sanitized SQL candidate is a single
// read-only SELECT-shaped statement. The validation layers, in order:
//
//  1. Deny-set keyword scan over every word token (case-insensitive).
//  2. Multiple-statement detection (semicolons outside string literals).
//  3. Statement-shape allow-list: only SELECT, or WITH without modifying
//     CTEs, is accepted; everything else is rejected by default.
//
// A nil return means the candidate may be staged for execution.
func ValidateReadOnly(sqlQuery string) error {
	trimmed := strings.TrimSpace(sqlQuery)
	if trimmed == "" {
		return &apperrors.UnsafeQueryError{Reason: "empty statement"}
	}

	for _, tok := range wordTokenPattern.FindAllString(trimmed, -1) {
		upper := strings.ToUpper(tok)
		if _, denied := denySet[upper]; denied {
			return &apperrors.UnsafeQueryError{Keyword: upper}
		}
	}

	normalized := stripTrailingSemicolon(trimmed)
	if hasSemicolonOutsideStrings(normalized) {
		return &apperrors.UnsafeQueryError{Reason: "multiple SQL statements are not allowed"}
	}

	switch detectShape(normalized) {
	case shapeSelect:
		return nil
	default:
		return &apperrors.UnsafeQueryError{Reason: "only SELECT statements may be executed"}
	}
}

type statementShape int

const (
	shapeSelect statementShape = iota
	shapeOther
)

// detectShape classifies the statement by its leading keyword. WITH is
// SELECT-shaped unless one of its CTEs modifies data.
func detectShape(sqlQuery string) statementShape {
	upper := strings.ToUpper(strings.TrimSpace(sqlQuery))

	switch {
	case strings.HasPrefix(upper, "SELECT"):
		return shapeSelect
	case strings.HasPrefix(upper, "WITH"):
		if modifyingCTEPattern.MatchString(sqlQuery) {
			return shapeOther
		}
		return shapeSelect
	default:
		return shapeOther
	}
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Exit on an unescaped single quote. Handles both backslash
			// escape (\') and SQL standard escape ('').
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding
// whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}
