// Package dataset decodes columnar resources into immutable in-memory tables.
package dataset

// Column describes one named column of a decoded table.
type Column struct {
	Name    string
	Type    string
	Missing int64 // Cells explicitly absent (null, or NaN in float columns)
}

// Table is a decoded, read-only table with a fixed ordered set of columns.
type Table interface {
	// NumRows returns the number of rows.
	NumRows() int64

	// NumColumns returns the number of top-level columns.
	NumColumns() int

	// Columns returns column descriptors in schema order.
	Columns() []Column

	// MissingCells returns the total missing-cell count across all columns.
	MissingCells() int64

	// Release frees any memory held by the table.
	Release()
}

// ColumnNames returns the names of t's columns in order.
func ColumnNames(t Table) []string {
	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func sumMissing(cols []Column) int64 {
	var n int64
	for _, c := range cols {
		n += c.Missing
	}
	return n
}
