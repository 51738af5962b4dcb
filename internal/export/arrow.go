package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

// Schema returns an Arrow schema with one nullable string field per column.
func Schema(t *delim.Table) *arrow.Schema {
	names := UniqueNames(t)
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord builds an Arrow record from t. The caller releases it.
func ToRecord(t *delim.Table, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema := Schema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for col := range schema.Fields() {
		sb := b.Field(col).(*array.StringBuilder)
		sb.Reserve(len(t.Rows))
		for _, row := range t.Rows {
			if cell := row.Get(col); cell.Valid {
				sb.Append(cell.Value)
			} else {
				sb.AppendNull()
			}
		}
	}
	return b.NewRecord()
}

// WriteParquet writes t as a single row group Parquet file.
func WriteParquet(w io.Writer, t *delim.Table) error {
	rec := ToRecord(t, memory.DefaultAllocator)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
