package eventbuilder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 64 * 1024 * 1024

// EventReader reads decoded events from a JSON-lines stream, one event
// (a JSON array of hits) per line. Blank lines are skipped.
type EventReader struct {
	scanner *bufio.Scanner
	line    int
}

func NewEventReader(r io.Reader) *EventReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &EventReader{scanner: scanner}
}

func (r *EventReader) Next() ([]CompassData, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var hits []CompassData
		if err := json.Unmarshal(data, &hits); err != nil {
			return nil, &ErrDecodeEvent{Line: r.line, Err: err}
		}
		for i := range hits {
			if err := CheckBoardChannel(hits[i].Board, hits[i].Channel); err != nil {
				return nil, &ErrDecodeEvent{Line: r.line, Err: fmt.Errorf("hit %d: %w", i, err)}
			}
			hits[i].UUID = GenerateBoardChannelUUID(hits[i].Board, hits[i].Channel)
		}
		return hits, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading events: %w", err)
	}
	return nil, io.EOF
}

// ReadAllEvents skips the first skip events and stops after maxEvents
// events counted from the start of the stream.
func ReadAllEvents(r io.Reader, skip int, maxEvents int) ([][]CompassData, error) {
	reader := NewEventReader(r)
	events := make([][]CompassData, 0)
	evtCount := -1
	for {
		// Stop before decoding the line past the limit, it may be truncated.
		if evtCount+1 >= maxEvents {
			if configuration.Verbosity > 0 {
				logger.Info("Max events reached", "eventReader")
			}
			break
		}
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, err
		}
		evtCount++
		if evtCount < skip {
			if configuration.Verbosity > 1 {
				message := fmt.Sprintf("Skipping event %d", evtCount)
				logger.Info(message, "eventReader")
			}
			continue
		}
		if configuration.Verbosity > 2 {
			message := fmt.Sprintf("Reading event %d with %d hits", evtCount, len(event))
			logger.Info(message, "eventReader")
		}
		events = append(events, event)
	}
	return events, nil
}

func ReadEventsFromFile(filename string, skip int, maxEvents int) ([][]CompassData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()
	return ReadAllEvents(file, skip, maxEvents)
}
