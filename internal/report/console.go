// Package report prints human-readable run progress and results.
package report

import (
	"fmt"
	"io"
	"strings"

	"openml-schema-check/internal/failure"
	"openml-schema-check/internal/models"
)

// Console writes progress and result lines. The output is for people;
// automation should rely on the exit code.
type Console struct {
	w io.Writer
}

// NewConsole creates a console reporter writing to w. A nil w discards output.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = io.Discard
	}
	return &Console{w: w}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Start() {
	c.printf("🔍 Starting OpenML dataset schema validation...")
}

func (c *Console) Downloading() {
	c.printf("📥 Downloading OpenML dataset...")
}

func (c *Console) Parsing() {
	c.printf("📊 Reading parquet data...")
}

// Shape prints the decoded table's dimensions and column names.
func (c *Console) Shape(rows int64, columns []string) {
	c.printf("📋 Dataset shape: (%d, %d)", rows, len(columns))
	c.printf("📋 Columns: [%s]", quoteAll(columns))
}

// Passed prints the summary of a run that passed every check.
func (c *Console) Passed(r *models.ValidationReport) {
	c.printf("✅ Dataset validation passed:")
	c.printf("   - Rows: %d ✓", r.Rows)
	c.printf("   - Columns: %d ✓", r.Columns)
	c.printf("   - Null values: %d ✓", r.MissingCells)
}

func (c *Console) Completed() {
	c.printf("🎉 Schema validation completed successfully")
}

// Failed prints one line describing err, prefixed by its failure class,
// followed by any operator hints.
func (c *Console) Failed(err error) {
	c.printf("❌ %s: %v", Headline(failure.Classify(err)), err)
	for _, h := range failure.Hints(err) {
		c.printf("   hint: %s", h)
	}
}

// Headline returns the leading phrase of a failure line for kind.
func Headline(kind failure.Kind) string {
	switch kind {
	case failure.KindNetwork:
		return "Network error downloading dataset"
	case failure.KindParse:
		return "Error parsing parquet file"
	case failure.KindSchema:
		return "Schema validation failed"
	case failure.KindResourceExhausted:
		return "Dataset exceeds resource limits"
	case failure.KindCanceled:
		return "Validation canceled"
	default:
		return "Unexpected error"
	}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
