package table

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/teranos/crdb/errors"
)

var pair = arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float64)

// ArrowSchema is the columnar layout of a Table. Pair columns are
// fixed_size_list<float64>[2].
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "quantity", Type: arrow.BinaryTypes.String},
	{Name: "exp", Type: arrow.BinaryTypes.String},
	{Name: "exp_type", Type: arrow.BinaryTypes.String},
	{Name: "sub_exp", Type: arrow.BinaryTypes.String},
	{Name: "e_relerr", Type: arrow.PrimitiveTypes.Float64},
	{Name: "e_type", Type: arrow.BinaryTypes.String},
	{Name: "e", Type: arrow.PrimitiveTypes.Float64},
	{Name: "e_bin", Type: pair},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	{Name: "err_sta", Type: pair},
	{Name: "err_sys", Type: pair},
	{Name: "ads", Type: arrow.BinaryTypes.String},
	{Name: "phi", Type: arrow.PrimitiveTypes.Float64},
	{Name: "distance", Type: arrow.PrimitiveTypes.Float64},
	{Name: "datetime", Type: arrow.BinaryTypes.String},
	{Name: "is_upper_limit", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

// Record builds an Arrow record holding t. The caller releases it.
func (t Table) Record(mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, ArrowSchema)
	defer b.Release()

	str := func(i int) *array.StringBuilder { return b.Field(i).(*array.StringBuilder) }
	f64 := func(i int) *array.Float64Builder { return b.Field(i).(*array.Float64Builder) }
	pairOf := func(i int, v [2]float64) {
		lb := b.Field(i).(*array.FixedSizeListBuilder)
		lb.Append(true)
		vb := lb.ValueBuilder().(*array.Float64Builder)
		vb.Append(v[0])
		vb.Append(v[1])
	}

	for _, m := range t {
		str(0).Append(m.Quantity)
		str(1).Append(m.Exp)
		str(2).Append(m.ExpType)
		str(3).Append(m.SubExp)
		f64(4).Append(m.ERelErr)
		str(5).Append(m.EType)
		f64(6).Append(m.E)
		pairOf(7, m.EBin)
		f64(8).Append(m.Value)
		pairOf(9, m.ErrSta)
		pairOf(10, m.ErrSys)
		str(11).Append(m.ADS)
		f64(12).Append(m.Phi)
		f64(13).Append(m.Distance)
		str(14).Append(m.Datetime)
		b.Field(15).(*array.BooleanBuilder).Append(m.IsUpperLimit)
	}
	return b.NewRecord()
}

// WriteParquet writes t to w as a snappy-compressed Parquet file with the
// Arrow schema stored in the metadata. If w is an io.Closer it is closed.
func WriteParquet(w io.Writer, t Table) error {
	mem := memory.NewGoAllocator()
	rec := t.Record(mem)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(ArrowSchema, w, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, "failed to create parquet writer")
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return errors.Wrap(err, "failed to write parquet rows")
	}
	return errors.Wrap(writer.Close(), "failed to close parquet writer")
}
