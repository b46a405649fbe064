package eventbuilder

import "fmt"

// CompassData is one decoded CoMPASS hit.
type CompassData struct {
	UUID        uint32  `json:"-"`
	Board       uint32  `json:"board"`
	Channel     uint32  `json:"channel"`
	Energy      float64 `json:"energy"`
	EnergyShort float64 `json:"energy_short"`
	Timestamp   float64 `json:"timestamp"`
}

func NewCompassData(board uint32, channel uint32, energy float64, energyShort float64, timestamp float64) CompassData {
	return CompassData{
		UUID:        GenerateBoardChannelUUID(board, channel),
		Board:       board,
		Channel:     channel,
		Energy:      energy,
		EnergyShort: energyShort,
		Timestamp:   timestamp,
	}
}

// MaxBoardChannel is the largest board or channel number a UUID can hold.
const MaxBoardChannel = 0xFFFF

// CheckBoardChannel rejects numbers that would alias another channel's UUID.
func CheckBoardChannel(board uint32, channel uint32) error {
	if board > MaxBoardChannel || channel > MaxBoardChannel {
		return fmt.Errorf("%w: board %d channel %d", ErrChannelOutOfRange, board, channel)
	}
	return nil
}

// Board in the upper 16 bits, channel in the lower 16. Callers validate
// with CheckBoardChannel first.
func GenerateBoardChannelUUID(board uint32, channel uint32) uint32 {
	return (board << 16) | (channel & 0xFFFF)
}

func DecomposeUUIDToBoardChannel(uuid uint32) (uint32, uint32) {
	return uuid >> 16, uuid & 0xFFFF
}
