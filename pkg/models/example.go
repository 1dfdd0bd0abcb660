package models

// ExampleQuery is one worked natural-language→SQL pair from the example
// corpus. Corpus entries are immutable; requests use a small random subset.
type ExampleQuery struct {
	Description string `json:"description" yaml:"description"`
	SQL         string `json:"sql" yaml:"sql"`
}
