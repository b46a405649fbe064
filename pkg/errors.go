package eventbuilder

import (
	"errors"
	"fmt"
)

// ErrFinalized is raised when a ChannelData is used after Finalize.
var ErrFinalized = errors.New("channel data already finalized")

// ErrUnknownField is raised for a field outside the compiled-in registry.
var ErrUnknownField = errors.New("unknown channel data field")

var (
	ErrDuplicateChannel   = errors.New("duplicate board/channel in channel map")
	ErrSchemaMismatch     = errors.New("column schema mismatch")
	ErrRaggedColumns      = errors.New("columns have different lengths")
	ErrUnknownChannelType = errors.New("unknown channel type")
	ErrChannelOutOfRange  = errors.New("board or channel out of range")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrDecodeEvent represents an error decoding one event line of a hit file.
type ErrDecodeEvent struct {
	Line int
	Err  error
}

func (e *ErrDecodeEvent) Error() string {
	return fmt.Sprintf("error decoding event at line %d: %v", e.Line, e.Err)
}

func (e *ErrDecodeEvent) Unwrap() error {
	return e.Err
}
