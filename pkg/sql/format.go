package sql

import (
	"strings"
)

// formatKeywords are uppercased by Format when they appear outside string
// literals. Deliberately a small set of structural keywords; anything not
// listed is left untouched.
var formatKeywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "AND": {}, "OR": {}, "NOT": {},
	"JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {}, "OUTER": {}, "ON": {},
	"GROUP": {}, "BY": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {}, "OFFSET": {},
	"AS": {}, "IN": {}, "IS": {}, "NULL": {}, "LIKE": {}, "BETWEEN": {},
	"DISTINCT": {}, "UNION": {}, "ALL": {}, "WITH": {}, "CASE": {}, "WHEN": {},
	"THEN": {}, "ELSE": {}, "END": {}, "ASC": {}, "DESC": {}, "COUNT": {},
	"SUM": {}, "AVG": {}, "MIN": {}, "MAX": {},
}

// Format uppercases recognized SQL keywords outside string literals. It is
// best-effort presentation polish for generated statements and never fails;
// unparseable input comes back unchanged in structure.
func Format(sqlQuery string) string {
	var out strings.Builder
	out.Grow(len(sqlQuery))

	inSingle := false
	inDouble := false
	wordStart := -1

	flushWord := func(end int) {
		if wordStart < 0 {
			return
		}
		word := sqlQuery[wordStart:end]
		upper := strings.ToUpper(word)
		if _, ok := formatKeywords[upper]; ok {
			out.WriteString(upper)
		} else {
			out.WriteString(word)
		}
		wordStart = -1
	}

	for i, r := range sqlQuery {
		switch {
		case inSingle:
			out.WriteRune(r)
			if r == '\'' {
				inSingle = false
			}
		case inDouble:
			out.WriteRune(r)
			if r == '"' {
				inDouble = false
			}
		case isWordRune(r):
			if wordStart < 0 {
				wordStart = i
			}
		default:
			flushWord(i)
			out.WriteRune(r)
			if r == '\'' {
				inSingle = true
			} else if r == '"' {
				inDouble = true
			}
		}
	}
	flushWord(len(sqlQuery))

	return out.String()
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
