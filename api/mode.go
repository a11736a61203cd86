package api

// Mode is the operating mode of an XBee module's serial interface.
type Mode int

const (
	ModeUnknown Mode = iota
	// ModeAT is transparent mode. Frames cannot be parsed in this mode.
	ModeAT
	ModeAPI
	// ModeAPIEscaped is API mode with reserved bytes escaped on the wire (AP=2).
	ModeAPIEscaped
)

func (m Mode) Escaped() bool {
	return m == ModeAPIEscaped
}

// API reports whether frames can be exchanged in this mode.
func (m Mode) API() bool {
	return m == ModeAPI || m == ModeAPIEscaped
}

func (m Mode) String() string {
	switch m {
	case ModeAT:
		return "AT"
	case ModeAPI:
		return "API"
	case ModeAPIEscaped:
		return "API escaped"
	default:
		return "unknown"
	}
}

// ParseMode maps the names accepted on command lines to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "at", "AT", "transparent":
		return ModeAT, true
	case "api", "API", "1":
		return ModeAPI, true
	case "escaped", "api-escaped", "API escaped", "2":
		return ModeAPIEscaped, true
	}
	return ModeUnknown, false
}
