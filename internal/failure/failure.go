// Package failure classifies run failures into a small, typed taxonomy.
//
// Every failure surfaces to the top level unchanged. Callers mark an error
// with its kind where it is first observed and the entry point maps it to a
// process exit code.
package failure

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind identifies the class of a run failure.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindParse
	KindSchema
	KindResourceExhausted
	KindCanceled
	KindInternal
)

// String returns the kind label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindSchema:
		return "schema"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// Sentinel markers. Use errors.Is against these, or Classify.
var (
	ErrNetwork           = errors.New("network error")
	ErrParse             = errors.New("parse error")
	ErrSchema            = errors.New("schema violation")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrCanceled          = errors.New("canceled")
	ErrInternal          = errors.New("internal error")
)

// Network wraps err as a network failure.
func Network(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrNetwork)
}

// Parse wraps err as a parse failure.
func Parse(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrParse)
}

// ResourceExhausted wraps err as a resource exhaustion failure.
func ResourceExhausted(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrResourceExhausted)
}

// Canceled wraps err as a cancellation.
func Canceled(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrCanceled)
}

// Internal wraps err as an unclassified internal failure.
func Internal(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrInternal)
}

// HTTPStatusError reports a non-success HTTP response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// SchemaViolation is raised by the first structural check that fails.
type SchemaViolation struct {
	Check    string
	Expected int64
	Actual   int64
}

func (v *SchemaViolation) Error() string {
	switch v.Check {
	case "row_count":
		return fmt.Sprintf("expected %d rows, got %d", v.Expected, v.Actual)
	case "column_count":
		return fmt.Sprintf("expected %d columns, got %d", v.Expected, v.Actual)
	case "missing_cells":
		return fmt.Sprintf("found %d null values in dataset, expected %d", v.Actual, v.Expected)
	default:
		return fmt.Sprintf("%s: expected %d, got %d", v.Check, v.Expected, v.Actual)
	}
}

// Schema marks a violation as a schema failure and attaches an operator hint.
func Schema(v *SchemaViolation) error {
	err := errors.Mark(v, ErrSchema)
	return errors.WithHint(err, "the upstream dataset may have been re-versioned; expectations are pinned and are not updated automatically")
}

// Classify returns the kind of err. Unmarked errors are internal, except
// for bare context errors which come from caller cancellation.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrSchema):
		return KindSchema
	case errors.Is(err, ErrResourceExhausted):
		return KindResourceExhausted
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// AsSchemaViolation extracts the violation carried by err, if any.
func AsSchemaViolation(err error) (*SchemaViolation, bool) {
	var v *SchemaViolation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsHTTPStatus extracts the HTTP status failure carried by err, if any.
func AsHTTPStatus(err error) (*HTTPStatusError, bool) {
	var s *HTTPStatusError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// Hints returns the operator hints attached anywhere in err's chain.
func Hints(err error) []string {
	return errors.GetAllHints(err)
}
