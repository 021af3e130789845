// Package export writes window metrics to Parquet for downstream analysis
// tooling.
package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/dqbench/dqbench/internal/model"
)

// metricsSchema returns the Arrow schema for window metrics.
func metricsSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "window", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "value_start", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "value_end", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "accuracy", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "completeness", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "timeliness", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
	}, nil)
}

// WriteParquet writes window metrics to a snappy-compressed Parquet file.
func WriteParquet(path string, windows []model.WindowMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := metricsSchema()
	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	if err != nil {
		f.Close()
		return fmt.Errorf("export: failed to create parquet writer: %w", err)
	}

	alloc := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for _, wm := range windows {
		builder.Field(0).(*array.Int64Builder).Append(wm.Key.Ordinal)
		builder.Field(1).(*array.Int64Builder).Append(wm.Key.FirstValueID)
		builder.Field(2).(*array.Int64Builder).Append(wm.Key.LastValueID)
		builder.Field(3).(*array.Float64Builder).Append(wm.Accuracy)
		builder.Field(4).(*array.Float64Builder).Append(wm.Completeness)
		builder.Field(5).(*array.Float64Builder).Append(wm.Timeliness)
	}

	record := builder.NewRecord()
	defer record.Release()

	if err := writer.Write(record); err != nil {
		writer.Close()
		f.Close()
		return fmt.Errorf("export: parquet write failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
