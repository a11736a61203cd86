package api

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Frame is one API frame. Implementations are immutable values.
type Frame interface {
	Type() FrameType
	// Payload returns the frame-specific bytes following the discriminator.
	Payload() []byte
	// Params lists the frame's fields in wire order, for Dump.
	Params() []Param
}

// Identified is implemented by frames that carry a frame ID.
type Identified interface {
	Frame
	FrameID() uint8
	// WithFrameID returns a copy of the frame using id.
	WithFrameID(id uint8) Frame
}

// Param is one named field of a frame.
type Param struct {
	Name  string
	Value string
}

// FrameIDOf returns the frame ID of f and whether f uses frame IDs at all.
func FrameIDOf(f Frame) (uint8, bool) {
	if idf, ok := f.(Identified); ok {
		return idf.FrameID(), true
	}
	return 0, false
}

// MaxBodyLen is the largest frame body the 16-bit length field can describe.
const MaxBodyLen = 0xFFFF

// Encode serializes f including delimiter, length and checksum. It fails
// with ErrFrameTooLarge if the body does not fit the length field.
func Encode(f Frame, escaped bool) ([]byte, error) {
	payload := f.Payload()
	body := make([]byte, 0, len(payload)+1)
	body = append(body, byte(f.Type()))
	body = append(body, payload...)
	return Envelope(body, escaped)
}

// Marshal is Encode for frames known to fit. It panics if the body is
// longer than MaxBodyLen.
func Marshal(f Frame, escaped bool) []byte {
	buf, err := Encode(f, escaped)
	if err != nil {
		panic(err)
	}
	return buf
}

// Envelope wraps a frame body (discriminator and fields) with the delimiter,
// the big-endian body length and the checksum. An empty body still produces
// a zero length field and a checksum of 0xFF.
func Envelope(body []byte, escaped bool) ([]byte, error) {
	if len(body) > MaxBodyLen {
		return nil, fmt.Errorf("%w: %d byte body", ErrFrameTooLarge, len(body))
	}
	buf := make([]byte, 0, len(body)+4)
	buf = append(buf, Delimiter)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(body)))

	var sum Checksum
	for _, b := range body {
		sum.Add(b)
		buf = append(buf, b)
	}
	buf = append(buf, sum.Generate())

	if escaped {
		return Escape(buf), nil
	}
	return buf, nil
}

// Write serializes f in the given mode and writes it to w in a single call.
func Write(w io.Writer, f Frame, mode Mode) error {
	if !mode.API() {
		return ErrUnsupportedMode
	}
	buf, err := Encode(f, mode.Escaped())
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Dump returns a multi-line human readable description of f.
func Dump(f Frame) string {
	raw, err := Encode(f, false)
	if err != nil {
		return err.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Start delimiter: %02X\n", raw[0])
	fmt.Fprintf(&sb, "Length: %02X %02X (%d)\n", raw[1], raw[2], len(raw)-4)
	fmt.Fprintf(&sb, "Frame type: %02X (%s)\n", byte(f.Type()), f.Type())
	if id, ok := FrameIDOf(f); ok {
		fmt.Fprintf(&sb, "Frame ID: %02X (%d)\n", id, id)
	}
	for _, p := range f.Params() {
		fmt.Fprintf(&sb, "%s: %s\n", p.Name, p.Value)
	}
	fmt.Fprintf(&sb, "Checksum: %02X", raw[len(raw)-1])
	return sb.String()
}

func hexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return strings.ToUpper(fmt.Sprintf("% x", b))
}

// dataParam renders payload data as hex, with a printable rendering when
// the data is plain ASCII.
func dataParam(name string, b []byte) Param {
	v := hexString(b)
	if len(b) > 0 && isPrintable(b) {
		v += fmt.Sprintf(" (%q)", b)
	}
	return Param{Name: name, Value: v}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Clone(b)
}
