package dataset

import (
	"fmt"
	"math"
)

// MemColumn is an in-memory column. A nil entry in Values is a missing cell.
type MemColumn struct {
	Name   string
	Values []any
}

// MemTable is a Table built directly from Go values. It is used to inject
// tables without going through a decoder.
type MemTable struct {
	rows int64
	cols []Column
}

// NewMemTable builds a table from columns. All columns must have the same
// length.
func NewMemTable(columns ...MemColumn) (*MemTable, error) {
	t := &MemTable{cols: make([]Column, len(columns))}
	for i, c := range columns {
		if i == 0 {
			t.rows = int64(len(c.Values))
		} else if int64(len(c.Values)) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Name, len(c.Values), t.rows)
		}
		t.cols[i] = Column{Name: c.Name, Type: columnType(c.Values), Missing: memMissing(c.Values)}
	}
	return t, nil
}

// Uniform builds a rows x len(names) table of non-missing integer cells.
func Uniform(rows int, names ...string) *MemTable {
	cols := make([]MemColumn, len(names))
	for i, name := range names {
		values := make([]any, rows)
		for r := range values {
			values[r] = int64(r)
		}
		cols[i] = MemColumn{Name: name, Values: values}
	}
	t, _ := NewMemTable(cols...)
	return t
}

func (t *MemTable) NumRows() int64      { return t.rows }
func (t *MemTable) NumColumns() int     { return len(t.cols) }
func (t *MemTable) Columns() []Column   { return append([]Column(nil), t.cols...) }
func (t *MemTable) MissingCells() int64 { return sumMissing(t.cols) }
func (t *MemTable) Release()            {}

func memMissing(values []any) int64 {
	var n int64
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			n++
		case float64:
			if math.IsNaN(x) {
				n++
			}
		case float32:
			if math.IsNaN(float64(x)) {
				n++
			}
		}
	}
	return n
}

func columnType(values []any) string {
	for _, v := range values {
		if v != nil {
			return fmt.Sprintf("%T", v)
		}
	}
	return "null"
}
