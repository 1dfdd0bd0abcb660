package sql

import (
	"errors"
	"testing"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
)

func TestValidateReadOnly_DenySet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		keyword string
	}{
		{"drop lowercase", "drop table airlines", "DROP"},
		{"drop mixed case", "DrOp table x", "DROP"},
		{"delete", "DELETE FROM flights", "DELETE"},
		{"truncate", "TRUNCATE airlines", "TRUNCATE"},
		{"alter", "ALTER TABLE flights ADD COLUMN x int", "ALTER"},
		{"update", "UPDATE airlines SET airline = 'x'", "UPDATE"},
		{"create", "CREATE TABLE x (id int)", "CREATE"},
		{"grant", "GRANT ALL ON flights TO public", "GRANT"},
		{"revoke", "REVOKE ALL ON flights FROM public", "REVOKE"},
		{"keyword buried mid-statement", "SELECT * FROM t; DROP TABLE t", "DROP"},
		{"keyword inside comment", "SELECT 1 -- DROP TABLE airlines", "DROP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReadOnly(tt.input)
			if err == nil {
				t.Fatalf("ValidateReadOnly(%q) = nil, want unsafe query error", tt.input)
			}
			var unsafeErr *apperrors.UnsafeQueryError
			if !errors.As(err, &unsafeErr) {
				t.Fatalf("ValidateReadOnly(%q) = %v, want *UnsafeQueryError", tt.input, err)
			}
			if unsafeErr.Keyword != tt.keyword {
				t.Errorf("offending keyword = %q, want %q", unsafeErr.Keyword, tt.keyword)
			}
		})
	}
}

func TestValidateReadOnly_AllowsSelects(t *testing.T) {
	queries := []string{
		"SELECT * FROM airlines",
		"select iata_code, airline from airlines where airline like 'A%'",
		"SELECT * FROM flights WHERE departure_delay > 30 ORDER BY departure_delay DESC",
		"WITH delayed AS (SELECT * FROM flights WHERE arrival_delay > 60) SELECT count(*) FROM delayed",
		"SELECT * FROM airports WHERE city = 'semi;colon city'",
		`SELECT * FROM "weird;table"`,
	}

	for _, q := range queries {
		if err := ValidateReadOnly(q); err != nil {
			t.Errorf("ValidateReadOnly(%q) = %v, want nil", q, err)
		}
	}
}

func TestValidateReadOnly_RejectsNonSelectShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
		{"insert", "INSERT INTO airlines VALUES ('ZZ', 'Zombie Air')"},
		{"call", "CALL refresh_flights()"},
		{"transaction control", "BEGIN"},
		{"explain", "EXPLAIN SELECT 1"},
		{"multiple statements", "SELECT 1; SELECT 2"},
		{"modifying CTE", "WITH gone AS (INSERT INTO t VALUES (1) RETURNING *) SELECT * FROM gone"},
		{"prose", "I cannot generate SQL for that question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReadOnly(tt.input)
			if err == nil {
				t.Fatalf("ValidateReadOnly(%q) = nil, want unsafe query error", tt.input)
			}
			var unsafeErr *apperrors.UnsafeQueryError
			if !errors.As(err, &unsafeErr) {
				t.Fatalf("ValidateReadOnly(%q) = %v, want *UnsafeQueryError", tt.input, err)
			}
		})
	}
}

func TestHasSemicolonOutsideStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"SELECT 1", false},
		{"SELECT 1; SELECT 2", true},
		{"SELECT * FROM t WHERE name = 'a;b'", false},
		{`SELECT * FROM "a;b"`, false},
		{"SELECT * FROM t WHERE name = 'O''Brien;' ", false},
	}

	for _, tt := range tests {
		if got := hasSemicolonOutsideStrings(tt.input); got != tt.expected {
			t.Errorf("hasSemicolonOutsideStrings(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
