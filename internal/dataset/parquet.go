package dataset

import (
	"bytes"
	"context"
	"math"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/memory"
	"github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/apache/arrow/go/v11/parquet/pqarrow"
	"github.com/cockroachdb/errors"

	"openml-schema-check/internal/failure"
)

// parquetMagic opens and closes every Parquet file.
var parquetMagic = []byte("PAR1")

// Decoder reads a complete Parquet body into an arrow-backed Table.
type Decoder struct {
	mem       memory.Allocator
	batchSize int64
}

// NewDecoder creates a decoder using mem for all allocations. A nil mem
// selects the Go allocator.
func NewDecoder(mem memory.Allocator) *Decoder {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Decoder{mem: mem, batchSize: 64 * 1024}
}

// Decode parses body as a Parquet file. Every structural failure, including
// a panic from the underlying reader, is reported as a parse failure.
func (d *Decoder) Decode(ctx context.Context, body []byte) (tbl Table, err error) {
	if len(body) < 2*len(parquetMagic) {
		return nil, failure.Parse(errors.Newf("body of %d bytes is too small for a parquet file", len(body)), "decode parquet")
	}
	if !bytes.Equal(body[:4], parquetMagic) || !bytes.Equal(body[len(body)-4:], parquetMagic) {
		return nil, failure.Parse(errors.New("missing PAR1 magic"), "decode parquet")
	}

	defer func() {
		if r := recover(); r != nil {
			tbl = nil
			err = failure.Parse(errors.Newf("reader panic: %v", r), "decode parquet")
		}
	}()

	rdr, err := file.NewParquetReader(bytes.NewReader(body), file.WithReadProps(parquet.NewReaderProperties(d.mem)))
	if err != nil {
		return nil, failure.Parse(err, "open parquet footer")
	}
	defer rdr.Close()

	index, err := pandasIndexColumns(rdr.MetaData().KeyValueMetadata())
	if err != nil {
		return nil, failure.Parse(err, "read file metadata")
	}

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: d.batchSize}, d.mem)
	if err != nil {
		return nil, failure.Parse(err, "map parquet schema")
	}

	at, err := fr.ReadTable(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, failure.Canceled(err, "read parquet row groups")
		}
		return nil, failure.Parse(err, "read parquet row groups")
	}

	return newArrowTable(at, rdr.NumRowGroups(), index), nil
}

// ArrowTable is a Table backed by an arrow.Table. Stored pandas index
// columns are kept apart from the data columns.
type ArrowTable struct {
	tbl       arrow.Table
	cols      []Column
	index     []string
	rowGroups int
}

func newArrowTable(tbl arrow.Table, rowGroups int, index map[string]bool) *ArrowTable {
	t := &ArrowTable{tbl: tbl, rowGroups: rowGroups}
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		if index[col.Name()] {
			t.index = append(t.index, col.Name())
			continue
		}
		t.cols = append(t.cols, Column{
			Name:    col.Name(),
			Type:    col.DataType().String(),
			Missing: countMissing(col.Data()),
		})
	}
	return t
}

func (t *ArrowTable) NumRows() int64      { return t.tbl.NumRows() }
func (t *ArrowTable) NumColumns() int     { return len(t.cols) }
func (t *ArrowTable) Columns() []Column   { return append([]Column(nil), t.cols...) }
func (t *ArrowTable) MissingCells() int64 { return sumMissing(t.cols) }

// IndexColumns returns the stored pandas index columns left out of the table.
func (t *ArrowTable) IndexColumns() []string { return append([]string(nil), t.index...) }

// RowGroups returns the number of row groups in the source file.
func (t *ArrowTable) RowGroups() int { return t.rowGroups }

// Release drops the reference to the underlying arrow memory.
func (t *ArrowTable) Release() {
	if t.tbl != nil {
		t.tbl.Release()
		t.tbl = nil
	}
}

// countMissing counts nulls in every chunk, plus NaN in floating point
// chunks, which readers of this dataset have always treated as absent.
func countMissing(data *arrow.Chunked) int64 {
	var n int64
	for _, chunk := range data.Chunks() {
		n += int64(chunk.NullN())
		switch arr := chunk.(type) {
		case *array.Float64:
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) && math.IsNaN(arr.Value(i)) {
					n++
				}
			}
		case *array.Float32:
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) && math.IsNaN(float64(arr.Value(i))) {
					n++
				}
			}
		}
	}
	return n
}
