package eventbuilder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Board 0 channels 0-6 are Cebra0-6, board 1 channel 0 is a focal plane scintillator.
func testChannelMap(t *testing.T) *ChannelMap {
	t.Helper()
	entries := []ChannelMapEntry{
		{Board: 0, Channel: 0, ChannelType: Cebra0},
		{Board: 0, Channel: 1, ChannelType: Cebra1},
		{Board: 0, Channel: 2, ChannelType: Cebra2},
		{Board: 0, Channel: 3, ChannelType: Cebra3},
		{Board: 0, Channel: 4, ChannelType: Cebra4},
		{Board: 0, Channel: 5, ChannelType: Cebra5},
		{Board: 0, Channel: 6, ChannelType: Cebra6},
		{Board: 1, Channel: 0, ChannelType: ScintLeft},
		{Board: 1, Channel: 1, ChannelType: None},
	}
	m, err := NewChannelMap(entries)
	require.NoError(t, err)
	return m
}

func columnByName(t *testing.T, columns []Column, name string) []float64 {
	t.Helper()
	for _, column := range columns {
		if column.Name == name {
			return column.Values
		}
	}
	t.Fatalf("column %s not found", name)
	return nil
}

func TestNewChannelDataIsEmpty(t *testing.T) {
	data := NewChannelData()
	assert.Equal(t, 0, data.Rows())
	assert.False(t, data.Finalized())

	columns := data.Finalize()
	require.Len(t, columns, NumFields)
	for _, column := range columns {
		assert.Empty(t, column.Values)
	}
}

func TestAppendEventColumnLengths(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()

	events := [][]CompassData{
		{NewCompassData(0, 0, 1, 1, 1)},
		{},
		{NewCompassData(0, 3, 2, 2, 2), NewCompassData(0, 6, 3, 3, 3)},
		{NewCompassData(9, 9, 4, 4, 4)},
		{NewCompassData(1, 0, 5, 5, 5)},
	}
	for i, event := range events {
		data.AppendEvent(event, m)
		assert.Equal(t, i+1, data.Rows())
		for _, column := range data.columns {
			assert.Len(t, column.values, i+1, "column %s", column.field)
		}
	}
}

func TestAppendEventSentinelFill(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()
	data.AppendEvent([]CompassData{NewCompassData(0, 2, 100, 10, 1000)}, m)
	data.AppendEvent([]CompassData{NewCompassData(0, 4, 200, 20, 2000)}, m)
	columns := data.Finalize()

	assert.Equal(t, []float64{100, InvalidValue}, columnByName(t, columns, "Cebra2Energy"))
	assert.Equal(t, []float64{10, InvalidValue}, columnByName(t, columns, "Cebra2Short"))
	assert.Equal(t, []float64{1000, InvalidValue}, columnByName(t, columns, "Cebra2Time"))
	assert.Equal(t, []float64{InvalidValue, 200}, columnByName(t, columns, "Cebra4Energy"))
	assert.Equal(t, []float64{InvalidValue, 20}, columnByName(t, columns, "Cebra4Short"))
	assert.Equal(t, []float64{InvalidValue, 2000}, columnByName(t, columns, "Cebra4Time"))
	assert.Equal(t, []float64{InvalidValue, InvalidValue}, columnByName(t, columns, "Cebra0Energy"))
}

func TestFinalizeOrderIgnoresHitOrder(t *testing.T) {
	m := testChannelMap(t)
	forward := NewChannelData()
	backward := NewChannelData()

	hits := []CompassData{
		NewCompassData(0, 0, 1, 2, 3),
		NewCompassData(0, 5, 4, 5, 6),
		NewCompassData(0, 6, 7, 8, 9),
	}
	reversed := []CompassData{hits[2], hits[1], hits[0]}
	forward.AppendEvent(hits, m)
	backward.AppendEvent(reversed, m)

	a := forward.Finalize()
	b := backward.Finalize()
	assert.Equal(t, a, b)
	for i, field := range Fields() {
		assert.Equal(t, field.String(), a[i].Name)
	}
}

func TestAppendEventLastWriteWins(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()
	data.AppendEvent([]CompassData{
		NewCompassData(0, 1, 10, 1, 100),
		NewCompassData(0, 1, 20, 2, 200),
	}, m)
	columns := data.Finalize()

	assert.Equal(t, []float64{20}, columnByName(t, columns, "Cebra1Energy"))
	assert.Equal(t, []float64{2}, columnByName(t, columns, "Cebra1Short"))
	assert.Equal(t, []float64{200}, columnByName(t, columns, "Cebra1Time"))
}

func TestAppendEventUnknownHits(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()
	data.AppendEvent([]CompassData{
		NewCompassData(7, 7, 1, 1, 1), // not in the map
		NewCompassData(1, 0, 2, 2, 2), // focal plane
		NewCompassData(1, 1, 3, 3, 3), // None
	}, m)

	assert.Equal(t, 1, data.Rows())
	assert.Equal(t, 1, data.UnmappedHits())
	assert.Equal(t, 2, data.IgnoredHits())
	for _, column := range data.Finalize() {
		assert.Equal(t, []float64{InvalidValue}, column.Values, "column %s", column.Name)
	}
}

type mapResolver map[uint32]ChannelType

func (r mapResolver) Resolve(uuid uint32) (ChannelMapEntry, bool) {
	channelType, ok := r[uuid]
	if !ok {
		return ChannelMapEntry{}, false
	}
	board, channel := DecomposeUUIDToBoardChannel(uuid)
	return ChannelMapEntry{Board: board, Channel: channel, ChannelType: channelType}, true
}

func TestRoundTripScenario(t *testing.T) {
	resolver := mapResolver{
		GenerateBoardChannelUUID(0, 0): Cebra0,
		GenerateBoardChannelUUID(0, 1): Cebra1,
	}
	data := NewChannelData()
	data.AppendEvent([]CompassData{NewCompassData(0, 0, 10.0, 1.0, 100.0)}, resolver)
	data.AppendEvent([]CompassData{
		NewCompassData(0, 1, 20.0, 2.0, 200.0),
		NewCompassData(3, 3, 99.0, 99.0, 99.0),
	}, resolver)
	columns := data.Finalize()

	expected := map[string][]float64{
		"Cebra0Energy": {10.0, InvalidValue},
		"Cebra0Short":  {1.0, InvalidValue},
		"Cebra0Time":   {100.0, InvalidValue},
		"Cebra1Energy": {InvalidValue, 20.0},
		"Cebra1Short":  {InvalidValue, 2.0},
		"Cebra1Time":   {InvalidValue, 200.0},
	}
	for name, values := range expected {
		assert.Equal(t, values, columnByName(t, columns, name), "column %s", name)
	}
	for _, column := range columns {
		assert.Len(t, column.Values, 2)
	}
}

func TestFinalizeTransfersOwnership(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()
	data.AppendEvent([]CompassData{NewCompassData(0, 0, 1, 1, 1)}, m)
	columns := data.Finalize()
	require.True(t, data.Finalized())
	assert.Len(t, columns[0].Values, 1)

	assert.Panics(t, func() { data.Finalize() })
	assert.Panics(t, func() { data.AppendEvent(nil, m) })

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrFinalized))
	}()
	data.AppendEvent(nil, m)
}

func TestUsedSizeGrows(t *testing.T) {
	m := testChannelMap(t)
	data := NewChannelData()
	empty := data.UsedSize()
	for i := 0; i < 100; i++ {
		data.AppendEvent([]CompassData{NewCompassData(0, 0, 1, 1, 1)}, m)
	}
	assert.GreaterOrEqual(t, data.UsedSize(), empty+100*NumFields*8)
}

func TestConcatColumns(t *testing.T) {
	m := testChannelMap(t)
	first := NewChannelData()
	first.AppendEvent([]CompassData{NewCompassData(0, 0, 1, 1, 1)}, m)
	second := NewChannelData()
	second.AppendEvent([]CompassData{NewCompassData(0, 1, 2, 2, 2)}, m)
	second.AppendEvent(nil, m)

	columns, err := ConcatColumns(first.Finalize(), second.Finalize())
	require.NoError(t, err)
	require.Len(t, columns, NumFields)
	assert.Equal(t, []float64{1, InvalidValue, InvalidValue}, columnByName(t, columns, "Cebra0Energy"))
	assert.Equal(t, []float64{InvalidValue, 2, InvalidValue}, columnByName(t, columns, "Cebra1Energy"))
}

func TestConcatColumnsErrors(t *testing.T) {
	good := []Column{{Name: "A", Values: []float64{1}}, {Name: "B", Values: []float64{2}}}

	tests := []struct {
		name   string
		shards [][]Column
		err    error
	}{
		{
			name:   "renamed column",
			shards: [][]Column{good, {{Name: "A", Values: []float64{1}}, {Name: "C", Values: []float64{2}}}},
			err:    ErrSchemaMismatch,
		},
		{
			name:   "missing column",
			shards: [][]Column{good, {{Name: "A", Values: []float64{1}}}},
			err:    ErrSchemaMismatch,
		},
		{
			name:   "ragged shard",
			shards: [][]Column{good, {{Name: "A", Values: []float64{1, 2}}, {Name: "B", Values: []float64{2}}}},
			err:    ErrRaggedColumns,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConcatColumns(tt.shards...)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	columns, err := ConcatColumns()
	require.NoError(t, err)
	assert.Empty(t, columns)
}
