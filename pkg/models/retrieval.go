package models

// RetrievedRow is one nearest-neighbor hit from the embedding index.
type RetrievedRow struct {
	SourceTable string  `json:"source_table"`
	RowPayload  string  `json:"row_payload"`
	Distance    float64 `json:"distance"`
}
