// Package models defines the data structures for validation events.
package models

// EventTypeValidationReport identifies report events on the wire.
const EventTypeValidationReport = "dataset.validation.report"

// Outcome values for ValidationReport.Outcome.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// ValidationReport summarises one validation run.
type ValidationReport struct {
	EventType    string   `json:"eventType"`
	RunID        string   `json:"runId"`
	DatasetURL   string   `json:"datasetUrl"`
	Timestamp    int64    `json:"timestamp"`
	DurationMs   int64    `json:"durationMs"`
	Outcome      string   `json:"outcome"`
	Stage        string   `json:"stage"`
	FailureKind  string   `json:"failureKind,omitempty"`
	Message      string   `json:"message,omitempty"`
	BodyBytes    int64    `json:"bodyBytes"`
	Rows         int64    `json:"rows"`
	Columns      int64    `json:"columns"`
	ColumnNames  []string `json:"columnNames,omitempty"`
	MissingCells int64    `json:"missingCells"`

	// Set only for schema violations
	Check    string `json:"check,omitempty"`
	Expected *int64 `json:"expected,omitempty"`
	Actual   *int64 `json:"actual,omitempty"`
}

// Passed reports whether the run completed every check.
func (r *ValidationReport) Passed() bool {
	return r.Outcome == OutcomePassed
}
