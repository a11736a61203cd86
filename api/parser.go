package api

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrTruncated       = errors.New("api: truncated frame")
	ErrBadChecksum     = errors.New("api: bad checksum")
	ErrTruncatedEscape = errors.New("api: truncated escape sequence")
	ErrUnsupportedMode = errors.New("api: unsupported operating mode")
	ErrInvalidPayload  = errors.New("api: invalid frame payload")
	ErrNoDelimiter     = errors.New("api: missing start delimiter")
	ErrFrameTooLarge   = errors.New("api: frame body too large")
)

// ParseError is returned for malformed input. Reason is one of the Err*
// sentinels above and Err, when set, is the underlying read error.
type ParseError struct {
	Reason error
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	s := e.Reason.Error()
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// frameReader reads frame bytes, unescaping them in escaped mode.
type frameReader struct {
	r       io.ByteReader
	escaped bool
}

func (fr frameReader) readByte(what string) (byte, error) {
	b, err := fr.r.ReadByte()
	if err != nil {
		return 0, &ParseError{Reason: ErrTruncated, Detail: "reading " + what, Err: err}
	}
	if fr.escaped && b == EscapeByte {
		b, err = fr.r.ReadByte()
		if err != nil {
			return 0, &ParseError{Reason: ErrTruncatedEscape, Detail: "reading " + what, Err: err}
		}
		b ^= escapeMask
	}
	return b, nil
}

// ReadFrame parses one frame from r. The start delimiter must already have
// been consumed. Unknown frame types are returned as RawFrame.
func ReadFrame(r io.ByteReader, mode Mode) (Frame, error) {
	if !mode.API() {
		return nil, &ParseError{Reason: ErrUnsupportedMode, Detail: mode.String()}
	}
	fr := frameReader{r: r, escaped: mode.Escaped()}

	var lenBuf [2]byte
	for i := range lenBuf {
		b, err := fr.readByte("length")
		if err != nil {
			return nil, err
		}
		lenBuf[i] = b
	}
	length := int(binary.BigEndian.Uint16(lenBuf[:]))

	var sum Checksum
	body := make([]byte, length)
	for i := range body {
		b, err := fr.readByte("frame data")
		if err != nil {
			return nil, err
		}
		sum.Add(b)
		body[i] = b
	}

	cs, err := fr.readByte("checksum")
	if err != nil {
		return nil, err
	}
	sum.Add(cs)
	if !sum.Validate() {
		return nil, &ParseError{Reason: ErrBadChecksum, Detail: fmt.Sprintf("checksum byte %02X", cs)}
	}
	if length == 0 {
		return nil, &ParseError{Reason: ErrInvalidPayload, Detail: "empty frame"}
	}
	return decodeBody(body)
}

// Decode parses a complete serialized frame, starting with the delimiter.
func Decode(b []byte, mode Mode) (Frame, error) {
	if len(b) == 0 || b[0] != Delimiter {
		return nil, &ParseError{Reason: ErrNoDelimiter}
	}
	return ReadFrame(&byteSliceReader{b: b[1:]}, mode)
}

type byteSliceReader struct {
	b []byte
}

func (r *byteSliceReader) ReadByte() (byte, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	c := r.b[0]
	r.b = r.b[1:]
	return c, nil
}

type decodeFunc func(payload []byte) (Frame, error)

var decoders = map[FrameType]decodeFunc{
	TypeTX64Request:             decodeTX64Request,
	TypeTX16Request:             decodeTX16Request,
	TypeATCommand:               decodeATCommand,
	TypeATCommandQueue:          decodeATCommandQueue,
	TypeTransmitRequest:         decodeTransmitRequest,
	TypeRemoteATCommand:         decodeRemoteATCommand,
	TypeRX64:                    decodeRX64,
	TypeRX16:                    decodeRX16,
	TypeRX64IO:                  decodeRX64IO,
	TypeRX16IO:                  decodeRX16IO,
	TypeATCommandResponse:       decodeATCommandResponse,
	TypeTXStatus:                decodeTXStatus,
	TypeModemStatus:             decodeModemStatus,
	TypeTransmitStatus:          decodeTransmitStatus,
	TypeReceivePacket:           decodeReceivePacket,
	TypeExplicitRxIndicator:     decodeExplicitRxIndicator,
	TypeIODataSampleRxIndicator: decodeIODataSampleRxIndicator,
	TypeRemoteATCommandResponse: decodeRemoteATCommandResponse,
}

func decodeBody(body []byte) (Frame, error) {
	t := FrameType(body[0])
	dec, ok := decoders[t]
	if !ok {
		return RawFrame{FrameType: t, Data: copyBytes(body[1:])}, nil
	}
	f, err := dec(body[1:])
	if err != nil {
		return nil, &ParseError{Reason: ErrInvalidPayload, Detail: fmt.Sprintf("%s: %v", t, err)}
	}
	return f, nil
}

// Framer reads consecutive frames from a byte stream, skipping any bytes
// found between frames.
type Framer struct {
	br        *bufio.Reader
	mode      Mode
	discarded int
}

func NewFramer(r io.Reader, mode Mode) *Framer {
	return &Framer{br: bufio.NewReader(r), mode: mode}
}

// Read returns the next frame. Errors from the underlying reader while
// looking for a delimiter are returned as is; errors inside a frame are
// *ParseError.
func (f *Framer) Read() (Frame, error) {
	for {
		b, err := f.br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == Delimiter {
			break
		}
		f.discarded++
	}
	return ReadFrame(f.br, f.mode)
}

// Discarded returns the number of bytes skipped while looking for frames.
func (f *Framer) Discarded() int {
	return f.discarded
}

// fields is a cursor over a frame payload.
type fields struct {
	b []byte
}

func need(p []byte, n int) error {
	if len(p) < n {
		return fmt.Errorf("need at least %d bytes, have %d", n, len(p))
	}
	return nil
}

func (p *fields) byte() byte {
	c := p.b[0]
	p.b = p.b[1:]
	return c
}

func (p *fields) uint16() uint16 {
	v := binary.BigEndian.Uint16(p.b)
	p.b = p.b[2:]
	return v
}

func (p *fields) addr64() Addr64 {
	v := binary.BigEndian.Uint64(p.b)
	p.b = p.b[8:]
	return Addr64(v)
}

func (p *fields) addr16() Addr16 {
	return Addr16(p.uint16())
}

func (p *fields) command() string {
	s := string(p.b[:2])
	p.b = p.b[2:]
	return s
}

func (p *fields) rest() []byte {
	r := copyBytes(p.b)
	p.b = nil
	return r
}
