package eventbuilder

import "fmt"

type ChannelDataField int

// Declaration order is the column order of every export.
const (
	Cebra0Energy ChannelDataField = iota
	Cebra1Energy
	Cebra2Energy
	Cebra3Energy
	Cebra4Energy
	Cebra5Energy
	Cebra6Energy

	Cebra0Short
	Cebra1Short
	Cebra2Short
	Cebra3Short
	Cebra4Short
	Cebra5Short
	Cebra6Short

	Cebra0Time
	Cebra1Time
	Cebra2Time
	Cebra3Time
	Cebra4Time
	Cebra5Time
	Cebra6Time

	NumFields = int(iota)
)

var channelDataFieldStrings = [NumFields]string{
	"Cebra0Energy",
	"Cebra1Energy",
	"Cebra2Energy",
	"Cebra3Energy",
	"Cebra4Energy",
	"Cebra5Energy",
	"Cebra6Energy",
	"Cebra0Short",
	"Cebra1Short",
	"Cebra2Short",
	"Cebra3Short",
	"Cebra4Short",
	"Cebra5Short",
	"Cebra6Short",
	"Cebra0Time",
	"Cebra1Time",
	"Cebra2Time",
	"Cebra3Time",
	"Cebra4Time",
	"Cebra5Time",
	"Cebra6Time",
}

func (f ChannelDataField) Valid() bool {
	return f >= 0 && int(f) < NumFields
}

func (f ChannelDataField) String() string {
	if !f.Valid() {
		return "Unknown"
	}
	return channelDataFieldStrings[f]
}

// Fields returns the registry in canonical order. The slice is a copy.
func Fields() []ChannelDataField {
	fields := make([]ChannelDataField, NumFields)
	for i := range fields {
		fields[i] = ChannelDataField(i)
	}
	return fields
}

// MustField panics if f is not part of the registry.
func MustField(f ChannelDataField) ChannelDataField {
	if !f.Valid() {
		panic(fmt.Errorf("%w: %d", ErrUnknownField, int(f)))
	}
	return f
}
