package export

import (
	"errors"
	"fmt"

	eventbuilder "github.com/next-exp/cebra_go/pkg"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrWriterClosed  = errors.New("writer already closed")
)

// Writer stores finalized channel data columns. WriteColumns may be called
// more than once; every call appends rows.
type Writer interface {
	WriteChannelMap(entries []eventbuilder.ChannelMapEntry) error
	WriteColumns(columns []eventbuilder.Column) error
	Close() error
}

type Options struct {
	CompressionLevel   int
	ParquetCompression ParquetCodec
}

func OptionsFromConfiguration(config eventbuilder.Configuration) (Options, error) {
	codec, err := ParseParquetCodec(config.ParquetCompression)
	if err != nil {
		return Options{}, err
	}
	return Options{
		CompressionLevel:   config.CompressionLevel,
		ParquetCompression: codec,
	}, nil
}

func NewWriter(format string, filename string, opts Options) (Writer, error) {
	switch format {
	case "hdf5":
		return NewHDF5Writer(filename, opts)
	case "parquet":
		return NewParquetWriter(filename, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func checkColumns(columns []eventbuilder.Column) (int, error) {
	if len(columns) == 0 {
		return 0, nil
	}
	rows := len(columns[0].Values)
	for _, column := range columns {
		if len(column.Values) != rows {
			return 0, fmt.Errorf("%w: column %q has %d rows, expected %d",
				eventbuilder.ErrRaggedColumns, column.Name, len(column.Values), rows)
		}
	}
	return rows, nil
}

func sameNames(columns []eventbuilder.Column, names []string) error {
	if len(columns) != len(names) {
		return fmt.Errorf("%w: got %d columns, file has %d",
			eventbuilder.ErrSchemaMismatch, len(columns), len(names))
	}
	for i, column := range columns {
		if column.Name != names[i] {
			return fmt.Errorf("%w: column %d is %q, file has %q",
				eventbuilder.ErrSchemaMismatch, i, column.Name, names[i])
		}
	}
	return nil
}
