package api

const (
	Delimiter  = 0x7E
	EscapeByte = 0x7D
	XON        = 0x11
	XOFF       = 0x13

	escapeMask = 0x20
)

// NeedsEscape reports whether b is one of the reserved bytes that are
// byte-stuffed in escaped API mode.
func NeedsEscape(b byte) bool {
	switch b {
	case Delimiter, EscapeByte, XON, XOFF:
		return true
	}
	return false
}

// Escape byte-stuffs a serialized frame. The first byte is the frame
// delimiter and is copied verbatim.
func Escape(frame []byte) []byte {
	if len(frame) == 0 {
		return nil
	}
	out := make([]byte, 1, len(frame)+len(frame)/4+1)
	out[0] = frame[0]
	return escapeAppend(out, frame[1:])
}

func escapeAppend(dst, p []byte) []byte {
	for _, b := range p {
		if NeedsEscape(b) {
			dst = append(dst, EscapeByte, b^escapeMask)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// Unescape reverses the byte-stuffing applied to p. A trailing escape
// marker yields ErrTruncatedEscape.
func Unescape(p []byte) ([]byte, error) {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		b := p[i]
		if b == EscapeByte {
			i++
			if i == len(p) {
				return out, ErrTruncatedEscape
			}
			b = p[i] ^ escapeMask
		}
		out = append(out, b)
	}
	return out, nil
}
