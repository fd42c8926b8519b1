// Package datasettest builds Parquet fixtures for tests.
package datasettest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/memory"
	"github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/compress"
	"github.com/apache/arrow/go/v11/parquet/pqarrow"
	parquetgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

// Spec describes a generated fixture.
//
// Columns cycle through int64, float64 and string types. Nulls are placed
// column by column from the first cell; NaNs go into float64 columns only.
//
// IndexColumn appends a stored pandas index column after the data columns
// and records it under index_columns in the pandas file metadata.
// PandasMetadata, when set, is written verbatim as that metadata instead.
type Spec struct {
	Rows           int
	Columns        int
	Nulls          int
	NaNs           int
	Compression    compress.Compression
	RowGroupRows   int64
	IndexColumn    string
	PandasMetadata string
}

// PandasIndexName is the column name pandas uses for an unnamed stored index.
const PandasIndexName = "__index_level_0__"

// Conforming is the shape the pinned dataset snapshot must have.
func Conforming() Spec {
	return Spec{Rows: 2069, Columns: 9}
}

// ColumnName returns the generated name of column i.
func ColumnName(i int) string {
	return fmt.Sprintf("col_%d", i)
}

// Parquet encodes a fixture described by s with the arrow writer.
func Parquet(t testing.TB, s Spec) []byte {
	t.Helper()

	pool := memory.NewGoAllocator()
	fields := make([]arrow.Field, s.Columns, s.Columns+1)
	for i := range fields {
		fields[i] = arrow.Field{Name: ColumnName(i), Type: columnType(i), Nullable: true}
	}
	if s.IndexColumn != "" {
		fields = append(fields, arrow.Field{Name: s.IndexColumn, Type: arrow.PrimitiveTypes.Int64})
	}
	schema := arrow.NewSchema(fields, pandasMetadata(t, s))

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	nulls, nans := s.Nulls, s.NaNs
	for c := 0; c < s.Columns; c++ {
		switch fb := builder.Field(c).(type) {
		case *array.Int64Builder:
			for r := 0; r < s.Rows; r++ {
				if nulls > 0 {
					fb.AppendNull()
					nulls--
					continue
				}
				fb.Append(int64(r))
			}
		case *array.Float64Builder:
			for r := 0; r < s.Rows; r++ {
				switch {
				case nulls > 0:
					fb.AppendNull()
					nulls--
				case nans > 0:
					fb.Append(math.NaN())
					nans--
				default:
					fb.Append(float64(r) / 10)
				}
			}
		case *array.StringBuilder:
			for r := 0; r < s.Rows; r++ {
				if nulls > 0 {
					fb.AppendNull()
					nulls--
					continue
				}
				fb.Append(fmt.Sprintf("v%d", r%7))
			}
		}
	}
	if s.IndexColumn != "" {
		ib := builder.Field(s.Columns).(*array.Int64Builder)
		for r := 0; r < s.Rows; r++ {
			ib.Append(int64(1000 + r))
		}
	}
	require.Zero(t, nulls, "fixture too small for requested nulls")
	require.Zero(t, nans, "fixture has no room for requested NaNs")

	record := builder.NewRecord()
	defer record.Release()

	opts := []parquet.WriterProperty{parquet.WithCompression(s.Compression)}
	if s.RowGroupRows > 0 {
		opts = append(opts, parquet.WithMaxRowGroupLength(s.RowGroupRows))
	}

	buf := new(bytes.Buffer)
	writer, err := pqarrow.NewFileWriter(schema, buf, parquet.NewWriterProperties(opts...), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, writer.Write(record))
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// pandasMetadata builds the file metadata pandas writes next to a DataFrame.
func pandasMetadata(t testing.TB, s Spec) *arrow.Metadata {
	doc := s.PandasMetadata
	if doc == "" && s.IndexColumn != "" {
		columns := make([]map[string]any, 0, s.Columns+1)
		for i := 0; i < s.Columns; i++ {
			columns = append(columns, map[string]any{"name": ColumnName(i), "field_name": ColumnName(i)})
		}
		columns = append(columns, map[string]any{"name": nil, "field_name": s.IndexColumn})
		raw, err := json.Marshal(map[string]any{
			"index_columns":  []string{s.IndexColumn},
			"column_indexes": []any{},
			"columns":        columns,
			"creator":        map[string]string{"library": "pyarrow"},
		})
		require.NoError(t, err)
		doc = string(raw)
	}
	if doc == "" {
		return nil
	}
	md := arrow.NewMetadata([]string{"pandas"}, []string{doc})
	return &md
}

func columnType(i int) arrow.DataType {
	switch i % 3 {
	case 0:
		return arrow.PrimitiveTypes.Int64
	case 1:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// ForeignRow is the row layout of fixtures written by parquet-go.
type ForeignRow struct {
	ID    int64    `parquet:"id"`
	Score *float64 `parquet:"score"`
	Label string   `parquet:"label"`
}

// ForeignParquet encodes rows with parquet-go rather than the arrow writer.
func ForeignParquet(t testing.TB, rows []ForeignRow) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	require.NoError(t, parquetgo.Write(buf, rows))
	return buf.Bytes()
}
