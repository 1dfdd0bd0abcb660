package models

import "time"

// FeedbackVerdict classifies user feedback on a generated query.
type FeedbackVerdict string

const (
	VerdictAccepted                  FeedbackVerdict = "accepted"
	VerdictRejectedWithoutCorrection FeedbackVerdict = "rejected-without-correction"
	VerdictRejectedWithCorrection    FeedbackVerdict = "rejected-with-correction"
)

// Valid reports whether the verdict is one of the recognized values.
func (v FeedbackVerdict) Valid() bool {
	switch v {
	case VerdictAccepted, VerdictRejectedWithoutCorrection, VerdictRejectedWithCorrection:
		return true
	}
	return false
}

// FeedbackRecord is one append-only feedback entry tied to a past generation.
// At least one of CorrectSQL/IncorrectSQL is always populated.
type FeedbackRecord struct {
	NaturalLanguage string    `json:"natural_language"`
	CorrectSQL      *string   `json:"correct_sql,omitempty"`
	IncorrectSQL    *string   `json:"incorrect_sql,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
