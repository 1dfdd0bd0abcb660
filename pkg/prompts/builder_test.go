package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askdb-labs/askdb-engine/pkg/models"
)

func TestBuild_Golden(t *testing.T) {
	examples := []models.ExampleQuery{
		{Description: "Fetch active users", SQL: "SELECT * FROM users WHERE status = 'active'"},
	}
	schema := &models.SchemaDescriptor{
		Tables: []models.TableSchema{
			{Name: "users", Columns: []string{"id", "name", "email", "status"}},
		},
	}

	expected := `Act as a database analyst and translate the following natural language input into a SQL query:
"Get all users"

Here are worked examples of natural language questions and their corresponding SQL queries:
- Fetch active users: SELECT * FROM users WHERE status = 'active'

Here is the schema information. These are the table columns. Correct any typos in the input against these names:
Table: users, Columns: id, name, email, status

Here are rows from the database that may be relevant to the question:
Result1

Use only columns that exist in the schema above. Return the SQL query only. No other text.
`

	got := Build("Get all users", "Result1", examples, schema)
	assert.Equal(t, expected, got)
}

func TestBuild_Deterministic(t *testing.T) {
	examples := []models.ExampleQuery{
		{Description: "Count flights", SQL: "SELECT count(*) FROM flights"},
	}
	schema := &models.SchemaDescriptor{
		Tables: []models.TableSchema{
			{Name: "flights", Columns: []string{"airline", "flight_number"}},
		},
	}

	first := Build("how many flights", "Table: flights, Data: AA, 100", examples, schema)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build("how many flights", "Table: flights, Data: AA, 100", examples, schema))
	}
}

func TestBuild_OmitsEmptySections(t *testing.T) {
	got := Build("show me all airlines", "", nil, &models.SchemaDescriptor{
		Tables: []models.TableSchema{
			{Name: "airlines", Columns: []string{"iata_code", "airline"}},
		},
	})

	assert.NotContains(t, got, "worked examples")
	assert.NotContains(t, got, "rows from the database")
	assert.Contains(t, got, "Table: airlines, Columns: iata_code, airline")
	assert.Contains(t, got, `"show me all airlines"`)
}

func TestBuild_IncludesSampleRow(t *testing.T) {
	schema := &models.SchemaDescriptor{
		Tables: []models.TableSchema{
			{
				Name:       "airlines",
				Columns:    []string{"iata_code", "airline"},
				SampleRows: [][]string{{"AA", "American Airlines"}, {"DL", "Delta"}},
			},
		},
	}

	got := Build("show me all airlines", "", nil, schema)
	assert.Contains(t, got, "  Sample row: AA, American Airlines\n")
	// Only the first sample row is rendered.
	assert.False(t, strings.Contains(got, "Delta"))
}
