package eventbuilder

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

type ChannelType int

const (
	None ChannelType = iota
	Cebra0
	Cebra1
	Cebra2
	Cebra3
	Cebra4
	Cebra5
	Cebra6
	// Focal plane channels share the digitizers with CeBrA but are
	// not exported by ChannelData.
	AnodeFront
	AnodeBack
	ScintLeft
	ScintRight
	Cathode
	DelayFrontLeft
	DelayFrontRight
	DelayBackLeft
	DelayBackRight
	Monitor
)

var channelTypeStrings = []string{
	"None",
	"Cebra0",
	"Cebra1",
	"Cebra2",
	"Cebra3",
	"Cebra4",
	"Cebra5",
	"Cebra6",
	"AnodeFront",
	"AnodeBack",
	"ScintLeft",
	"ScintRight",
	"Cathode",
	"DelayFrontLeft",
	"DelayFrontRight",
	"DelayBackLeft",
	"DelayBackRight",
	"Monitor",
}

func (c ChannelType) String() string {
	if c < None || int(c) >= len(channelTypeStrings) {
		return "UNKNOWN"
	}
	return channelTypeStrings[c]
}

func ParseChannelType(s string) (ChannelType, error) {
	for i, v := range channelTypeStrings {
		if v == s {
			return ChannelType(i), nil
		}
	}
	return None, fmt.Errorf("%w: %s", ErrUnknownChannelType, s)
}

func (c ChannelType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ChannelType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseChannelType(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type ChannelMapEntry struct {
	Board       uint32      `json:"board"`
	Channel     uint32      `json:"channel"`
	ChannelType ChannelType `json:"type"`
}

func (e ChannelMapEntry) UUID() uint32 {
	return GenerateBoardChannelUUID(e.Board, e.Channel)
}

// ChannelResolver maps a hardware UUID to its channel role.
type ChannelResolver interface {
	Resolve(uuid uint32) (ChannelMapEntry, bool)
}

// ChannelMap is immutable once built and safe for concurrent reads.
type ChannelMap struct {
	entries map[uint32]ChannelMapEntry
}

func NewChannelMap(entries []ChannelMapEntry) (*ChannelMap, error) {
	m := &ChannelMap{entries: make(map[uint32]ChannelMapEntry, len(entries))}
	for _, entry := range entries {
		if err := CheckBoardChannel(entry.Board, entry.Channel); err != nil {
			return nil, err
		}
		uuid := entry.UUID()
		if _, ok := m.entries[uuid]; ok {
			return nil, fmt.Errorf("%w: board %d channel %d", ErrDuplicateChannel, entry.Board, entry.Channel)
		}
		m.entries[uuid] = entry
	}
	return m, nil
}

func (m *ChannelMap) Resolve(uuid uint32) (ChannelMapEntry, bool) {
	entry, ok := m.entries[uuid]
	return entry, ok
}

func (m *ChannelMap) Len() int {
	return len(m.entries)
}

// Entries returns the map sorted by UUID, that is by board then channel.
func (m *ChannelMap) Entries() []ChannelMapEntry {
	sorted := make([]ChannelMapEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UUID() < sorted[j].UUID()
	})
	return sorted
}

// LoadChannelMapFile reads a JSON array of {"board", "channel", "type"} objects.
func LoadChannelMapFile(filename string) (*ChannelMap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	var entries []ChannelMapEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing channel map %q: %w", filename, err)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Channel map read from %s: %d channels", filename, len(entries))
		logger.Info(message, "channelMap")
	}
	return NewChannelMap(entries)
}
