package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	eventbuilder "github.com/next-exp/cebra_go/pkg"
)

// ChannelMapMetadataKey holds the JSON encoded channel map in the schema metadata.
const ChannelMapMetadataKey = "channel_map"

// ParquetWriter writes each WriteColumns call as one record batch. The file
// is created on the first call, so the channel map has to be set before it.
type ParquetWriter struct {
	Filename   string
	RowCounter int
	file       *os.File
	writer     *pqarrow.FileWriter
	schema     *arrow.Schema
	channelMap []byte
	opts       Options
	mem        memory.Allocator
	closed     bool
}

func NewParquetWriter(filename string, opts Options) (*ParquetWriter, error) {
	if opts.ParquetCompression.Name == "" {
		codec, err := ParseParquetCodec("snappy")
		if err != nil {
			return nil, err
		}
		opts.ParquetCompression = codec
	}
	return &ParquetWriter{
		Filename: filename,
		opts:     opts,
		mem:      memory.NewGoAllocator(),
	}, nil
}

func (w *ParquetWriter) WriteChannelMap(entries []eventbuilder.ChannelMapEntry) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.writer != nil {
		return errors.New("channel map must be written before the first columns")
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error encoding channel map: %w", err)
	}
	w.channelMap = data
	return nil
}

func (w *ParquetWriter) open(columns []eventbuilder.Column) error {
	fields := make([]arrow.Field, len(columns))
	for i, column := range columns {
		fields[i] = arrow.Field{Name: column.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: false}
	}
	var metadata *arrow.Metadata
	if w.channelMap != nil {
		md := arrow.NewMetadata([]string{ChannelMapMetadataKey}, []string{string(w.channelMap)})
		metadata = &md
	}
	w.schema = arrow.NewSchema(fields, metadata)

	file, err := os.Create(w.Filename)
	if err != nil {
		return &eventbuilder.ErrOpenFile{Filename: w.Filename, Err: err}
	}

	writerOpts := []parquet.WriterProperty{
		parquet.WithCompression(w.opts.ParquetCompression.Code),
		parquet.WithStats(true),
	}
	if w.opts.ParquetCompression.supportsLevel() && w.opts.CompressionLevel > 0 {
		writerOpts = append(writerOpts, parquet.WithCompressionLevel(w.opts.CompressionLevel))
	}
	writerProps := parquet.NewWriterProperties(writerOpts...)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(w.schema, file, writerProps, arrowProps)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	w.file = file
	w.writer = writer
	return nil
}

func (w *ParquetWriter) WriteColumns(columns []eventbuilder.Column) error {
	if w.closed {
		return ErrWriterClosed
	}
	rows, err := checkColumns(columns)
	if err != nil {
		return err
	}
	if w.writer == nil {
		if err := w.open(columns); err != nil {
			return err
		}
	} else {
		names := make([]string, len(w.schema.Fields()))
		for i, field := range w.schema.Fields() {
			names[i] = field.Name
		}
		if err := sameNames(columns, names); err != nil {
			return err
		}
	}
	if rows == 0 {
		return nil
	}

	arrays := make([]arrow.Array, len(columns))
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()
	for i, column := range columns {
		builder := array.NewFloat64Builder(w.mem)
		builder.AppendValues(column.Values, nil)
		arrays[i] = builder.NewArray()
		builder.Release()
	}

	record := array.NewRecord(w.schema, arrays, int64(rows))
	defer record.Release()
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	w.RowCounter += rows
	return nil
}

// Close is a no-op after the first call.
func (w *ParquetWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.writer == nil {
		// Nothing was written, still leave an empty table behind.
		if err := w.open(emptyColumns()); err != nil {
			return err
		}
	}
	var errs []error
	if err := w.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close Parquet writer: %w", err))
	}
	if err := w.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}
	w.writer = nil
	w.file = nil
	return errors.Join(errs...)
}

func emptyColumns() []eventbuilder.Column {
	fields := eventbuilder.Fields()
	columns := make([]eventbuilder.Column, len(fields))
	for i, field := range fields {
		columns[i] = eventbuilder.Column{Name: field.String(), Values: []float64{}}
	}
	return columns
}
