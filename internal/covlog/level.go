package covlog

import "fmt"

// Level controls how much tracer bookkeeping is logged.
type Level uint8

const (
	// LevelOff disables logging.
	LevelOff Level = iota // no logging
	// LevelEvents logs one line per delivered host event.
	LevelEvents
	// LevelState logs events plus depth-stack transitions.
	LevelState
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelEvents:
		return "events"
	case LevelState:
		return "state"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "events", "EVENTS":
		return LevelEvents, nil
	case "state", "STATE":
		return LevelState, nil
	default:
		return LevelOff, fmt.Errorf("invalid log level: %q (expected: off|events|state)", s)
	}
}
