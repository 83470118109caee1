package core

import "fmt"

// Mode is the scheduler's current flush phase.
type Mode int

const (
	// ModeIdle: no flush is running
	ModeIdle Mode = iota

	// ModeReading: the read queue is being drained
	ModeReading

	// ModeWriting: the write queue is being drained
	ModeWriting
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeReading:
		return "reading"
	case ModeWriting:
		return "writing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// needsFrame decides whether a task of the given kind, submitted while the
// scheduler is in mode, needs a new frame or is absorbed by the running flush.
//
//	mode     | read        | write
//	idle     | new frame   | new frame
//	reading  | absorbed    | absorbed (write phase of this flush)
//	writing  | new frame   | absorbed
func needsFrame(mode Mode, kind TaskKind) bool {
	switch mode {
	case ModeIdle:
		return true
	case ModeReading:
		return false
	case ModeWriting:
		switch kind {
		case KindRead:
			// The write phase is underway; the read waits for the next flush.
			return true
		case KindWrite:
			return false
		default:
			return true
		}
	default:
		panic(fmt.Sprintf("core: unhandled scheduler mode %v", mode))
	}
}
