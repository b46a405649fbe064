package eventbuilder

import (
	"fmt"
	"unsafe"
)

// InvalidValue fills every cell whose channel did not fire in an event.
const InvalidValue float64 = -1.0e6

// Fields written by each CeBrA role: energy, short gate, time.
var cebraFields = map[ChannelType][3]ChannelDataField{
	Cebra0: {Cebra0Energy, Cebra0Short, Cebra0Time},
	Cebra1: {Cebra1Energy, Cebra1Short, Cebra1Time},
	Cebra2: {Cebra2Energy, Cebra2Short, Cebra2Time},
	Cebra3: {Cebra3Energy, Cebra3Short, Cebra3Time},
	Cebra4: {Cebra4Energy, Cebra4Short, Cebra4Time},
	Cebra5: {Cebra5Energy, Cebra5Short, Cebra5Time},
	Cebra6: {Cebra6Energy, Cebra6Short, Cebra6Time},
}

type Column struct {
	Name   string
	Values []float64
}

type fieldColumn struct {
	field  ChannelDataField
	values []float64
}

// ChannelData accumulates events into one column per registry field.
// It is not safe for concurrent use. Finalize hands the column buffers to
// the caller without copying, so a ChannelData cannot be used afterwards.
type ChannelData struct {
	columns   []fieldColumn
	rows      int
	finalized bool
	unmapped  int
	ignored   int
}

func NewChannelData() *ChannelData {
	fields := Fields()
	data := &ChannelData{
		columns: make([]fieldColumn, len(fields)),
	}
	for i, field := range fields {
		data.columns[i] = fieldColumn{field: field, values: make([]float64, 0)}
	}
	return data
}

func (d *ChannelData) Rows() int {
	return d.rows
}

func (d *ChannelData) Finalized() bool {
	return d.finalized
}

// UnmappedHits counts hits whose UUID was not in the channel map.
func (d *ChannelData) UnmappedHits() int {
	return d.unmapped
}

// IgnoredHits counts mapped hits whose role is not a CeBrA detector.
func (d *ChannelData) IgnoredHits() int {
	return d.ignored
}

// UsedSize is the number of bytes held by the column buffers.
func (d *ChannelData) UsedSize() int {
	size := int(unsafe.Sizeof(*d))
	for _, column := range d.columns {
		size += int(unsafe.Sizeof(column)) + cap(column.values)*int(unsafe.Sizeof(float64(0)))
	}
	return size
}

// To keep columns all same length, push invalid values as necessary
func (d *ChannelData) pushDefaults() {
	for i := range d.columns {
		if len(d.columns[i].values) < d.rows {
			d.columns[i].values = append(d.columns[i].values, InvalidValue)
		}
	}
}

// Update the last element to the given value. Columns are stored in
// registry order, so the field is also the index.
func (d *ChannelData) setValue(field ChannelDataField, value float64) {
	values := d.columns[MustField(field)].values
	if len(values) > 0 {
		values[len(values)-1] = value
	}
}

func (d *ChannelData) AppendEvent(event []CompassData, resolver ChannelResolver) {
	if d.finalized {
		panic(fmt.Errorf("AppendEvent: %w", ErrFinalized))
	}
	d.rows++
	d.pushDefaults()

	for _, hit := range event {
		entry, ok := resolver.Resolve(hit.UUID)
		if !ok {
			d.unmapped++
			continue
		}
		fields, ok := cebraFields[entry.ChannelType]
		if !ok {
			d.ignored++
			continue
		}
		d.setValue(fields[0], hit.Energy)
		d.setValue(fields[1], hit.EnergyShort)
		d.setValue(fields[2], hit.Timestamp)
	}
}

// Finalize returns the columns in registry order. It can be called once.
func (d *ChannelData) Finalize() []Column {
	if d.finalized {
		panic(fmt.Errorf("Finalize: %w", ErrFinalized))
	}
	d.finalized = true

	columns := make([]Column, len(d.columns))
	for i, column := range d.columns {
		columns[i] = Column{Name: column.field.String(), Values: column.values}
	}
	d.columns = nil
	return columns
}

// ConcatColumns appends finalized shards in the order given.
func ConcatColumns(shards ...[]Column) ([]Column, error) {
	if len(shards) == 0 {
		return []Column{}, nil
	}
	for s, shard := range shards {
		if err := checkShard(shard); err != nil {
			return nil, fmt.Errorf("shard %d: %w", s, err)
		}
		if len(shard) != len(shards[0]) {
			return nil, fmt.Errorf("%w: shard %d has %d columns, expected %d",
				ErrSchemaMismatch, s, len(shard), len(shards[0]))
		}
		for i := range shard {
			if shard[i].Name != shards[0][i].Name {
				return nil, fmt.Errorf("%w: shard %d column %d is %q, expected %q",
					ErrSchemaMismatch, s, i, shard[i].Name, shards[0][i].Name)
			}
		}
	}

	rows := 0
	for _, shard := range shards {
		if len(shard) > 0 {
			rows += len(shard[0].Values)
		}
	}

	result := make([]Column, len(shards[0]))
	for i := range result {
		values := make([]float64, 0, rows)
		for _, shard := range shards {
			values = append(values, shard[i].Values...)
		}
		result[i] = Column{Name: shards[0][i].Name, Values: values}
	}
	return result, nil
}

func checkShard(columns []Column) error {
	for _, column := range columns {
		if len(column.Values) != len(columns[0].Values) {
			return fmt.Errorf("%w: column %q has %d rows, expected %d",
				ErrRaggedColumns, column.Name, len(column.Values), len(columns[0].Values))
		}
	}
	return nil
}
