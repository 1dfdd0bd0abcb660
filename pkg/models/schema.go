package models

// TableSchema describes one table: its ordered column names and up to a few
// representative sample rows (values rendered as strings).
type TableSchema struct {
	Name       string     `json:"name"`
	Columns    []string   `json:"columns"`
	SampleRows [][]string `json:"sample_rows,omitempty"`
}

// SchemaDescriptor is a read-only snapshot of the relational schema fetched
// per generation request.
type SchemaDescriptor struct {
	Tables []TableSchema `json:"tables"`
}

// Table returns the schema for the named table, or nil if absent.
func (s *SchemaDescriptor) Table(name string) *TableSchema {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
