// Package schema checks a decoded table against the pinned dataset shape.
package schema

import (
	"github.com/rs/zerolog"

	"openml-schema-check/internal/dataset"
	"openml-schema-check/internal/failure"
	"openml-schema-check/internal/observability/logging"
)

// Expected shape of the pinned OpenML dataset snapshot. These describe one
// specific dataset version and are not configurable.
const (
	ExpectedRows         int64 = 2069
	ExpectedColumns      int64 = 9
	ExpectedMissingCells int64 = 0
)

// Check names, in evaluation order.
const (
	CheckRowCount     = "row_count"
	CheckColumnCount  = "column_count"
	CheckMissingCells = "missing_cells"
)

// expectation is the structural shape a table must have.
type expectation struct {
	Rows         int64
	Columns      int64
	MissingCells int64
}

func pinned() expectation {
	return expectation{
		Rows:         ExpectedRows,
		Columns:      ExpectedColumns,
		MissingCells: ExpectedMissingCells,
	}
}

type Validator struct {
	expect expectation
	logger zerolog.Logger
}

// New returns a validator for the pinned snapshot.
func New() *Validator {
	return &Validator{expect: pinned(), logger: logging.WithComponent("schema")}
}

// Validate runs the row, column and missing-cell checks in that order and
// returns the first violation. Later checks are not evaluated.
func (v *Validator) Validate(t dataset.Table) error {
	checks := []struct {
		name     string
		expected int64
		actual   func() int64
	}{
		{CheckRowCount, v.expect.Rows, t.NumRows},
		{CheckColumnCount, v.expect.Columns, func() int64 { return int64(t.NumColumns()) }},
		{CheckMissingCells, v.expect.MissingCells, t.MissingCells},
	}

	for _, c := range checks {
		actual := c.actual()
		if actual != c.expected {
			v.logger.Debug().
				Str("check", c.name).
				Int64("expected", c.expected).
				Int64("actual", actual).
				Msg("Schema check failed")
			return failure.Schema(&failure.SchemaViolation{
				Check:    c.name,
				Expected: c.expected,
				Actual:   actual,
			})
		}
	}
	return nil
}
