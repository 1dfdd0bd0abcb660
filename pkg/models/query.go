package models

import "time"

// GeneratedQuery is a generated-but-unexecuted SQL statement staged under an
// opaque token. It is owned by the token store until consumed by execution.
type GeneratedQuery struct {
	Token           string    `json:"token"`
	NaturalLanguage string    `json:"natural_language"`
	SQL             string    `json:"sql"`
	IssuedAt        time.Time `json:"issued_at"`
}
