package engine

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// ArrowSchema is the column layout of the exported store.
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "indicator", Type: arrow.BinaryTypes.String},
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow streams the dataset as a single Arrow IPC record batch.
func WriteArrow(w io.Writer, ds *Dataset) error {
	b := array.NewRecordBuilder(memory.NewGoAllocator(), ArrowSchema)
	defer b.Release()

	inds := b.Field(0).(*array.StringBuilder)
	ctrs := b.Field(1).(*array.StringBuilder)
	years := b.Field(2).(*array.Int32Builder)
	vals := b.Field(3).(*array.Float64Builder)

	rows := ds.Flatten()
	b.Reserve(len(rows))
	for _, r := range rows {
		inds.Append(string(r.Indicator))
		ctrs.Append(r.Country)
		years.Append(int32(r.Year))
		vals.Append(r.Value)
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(ArrowSchema))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("write arrow batch: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("close arrow writer: %w", err)
	}
	return nil
}
