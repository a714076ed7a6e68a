package export

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// ArrowSchema maps column kinds to nullable arrow types: int to int64,
// float to float64, text to utf8.
func ArrowSchema(t *frame.Table) *arrow.Schema {
	fields := make([]arrow.Field, 0, t.NumCols())
	for _, c := range t.Columns() {
		fields = append(fields, arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k frame.Kind) arrow.DataType {
	switch k {
	case frame.KindInt:
		return arrow.PrimitiveTypes.Int64
	case frame.KindFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// ToArrow converts t into a single-chunk arrow table. The caller releases it.
func ToArrow(t *frame.Table, mem memory.Allocator) (arrow.Table, error) {
	schema := ArrowSchema(t)

	cols := make([]arrow.Array, 0, t.NumCols())
	defer func() {
		for _, a := range cols {
			a.Release()
		}
	}()

	for _, c := range t.Columns() {
		arr, err := buildArray(c, mem)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		cols = append(cols, arr)
	}

	rec := array.NewRecord(schema, cols, int64(t.NumRows()))
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func buildArray(c *frame.Column, mem memory.Allocator) (arrow.Array, error) {
	switch c.Kind {
	case frame.KindInt:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.Reserve(len(c.Cells))
		for i, cell := range c.Cells {
			v := frame.ToPgInt8(cell)
			switch {
			case v.Valid:
				b.Append(v.Int64)
			case cell.Valid:
				return nil, fmt.Errorf("row %d: %q is not an integer", i, cell.String)
			default:
				b.AppendNull()
			}
		}
		return b.NewArray(), nil

	case frame.KindFloat:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.Reserve(len(c.Cells))
		for i, cell := range c.Cells {
			v := frame.ToPgFloat8(cell)
			switch {
			case v.Valid:
				b.Append(v.Float64)
			case cell.Valid:
				return nil, fmt.Errorf("row %d: %q is not a number", i, cell.String)
			default:
				b.AppendNull()
			}
		}
		return b.NewArray(), nil

	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.Reserve(len(c.Cells))
		for _, cell := range c.Cells {
			if cell.Valid {
				b.Append(cell.String)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	}
}
