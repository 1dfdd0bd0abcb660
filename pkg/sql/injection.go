package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a SQL injection pattern detected in a
// user-supplied value.
type InjectionCheckResult struct {
	IsSQLi      bool   // true if an injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       string // the value that was checked
}

// CheckInputForInjection screens a natural-language input for SQL injection
// patterns before it is allowed anywhere near the generation pipeline. A
// legitimate question phrased in plain language does not fingerprint as SQLi;
// inputs that do are rejected at the boundary.
//
// Returns nil when no injection is detected.
func CheckInputForInjection(value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Value:       value,
	}
}
