// Package prompts renders the completion prompt for SQL generation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// Build renders the completion prompt from the natural-language input and
// the assembled grounding context. The template is pure and deterministic:
// identical inputs produce byte-identical output. Sections with no content
// (no examples, no retrieved rows) are omitted entirely.
//
// Fixed section order: role priming with the quoted input, worked examples,
// schema (with one sample row per table when available), retrieved rows,
// closing directive.
func Build(naturalLanguageInput, retrievedContext string, examples []models.ExampleQuery, schema *models.SchemaDescriptor) string {
	var prompt strings.Builder

	prompt.WriteString("Act as a database analyst and translate the following natural language input into a SQL query:\n")
	prompt.WriteString(fmt.Sprintf("%q\n", naturalLanguageInput))

	if len(examples) > 0 {
		prompt.WriteString("\nHere are worked examples of natural language questions and their corresponding SQL queries:\n")
		for _, example := range examples {
			prompt.WriteString(fmt.Sprintf("- %s: %s\n", example.Description, example.SQL))
		}
	}

	if schema != nil && len(schema.Tables) > 0 {
		prompt.WriteString("\nHere is the schema information. These are the table columns. Correct any typos in the input against these names:\n")
		for _, table := range schema.Tables {
			prompt.WriteString(fmt.Sprintf("Table: %s, Columns: %s\n", table.Name, strings.Join(table.Columns, ", ")))
			if len(table.SampleRows) > 0 {
				prompt.WriteString(fmt.Sprintf("  Sample row: %s\n", strings.Join(table.SampleRows[0], ", ")))
			}
		}
	}

	if retrievedContext != "" {
		prompt.WriteString("\nHere are rows from the database that may be relevant to the question:\n")
		prompt.WriteString(retrievedContext)
		prompt.WriteString("\n")
	}

	prompt.WriteString("\nUse only columns that exist in the schema above. Return the SQL query only. No other text.\n")

	return prompt.String()
}
