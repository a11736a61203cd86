package api

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestMarshalATCommand(t *testing.T) {
	f := ATCommand{ID: 1, Command: "NI"}
	want := []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49, 0x5F}
	if got := Marshal(f, false); !bytes.Equal(got, want) {
		t.Fatalf("Marshal = % X, want % X", got, want)
	}
	// Nothing in this frame needs escaping.
	if got := Marshal(f, true); !bytes.Equal(got, want) {
		t.Fatalf("Marshal escaped = % X, want % X", got, want)
	}
}

func TestEnvelopeEmpty(t *testing.T) {
	want := []byte{0x7E, 0x00, 0x00, 0xFF}
	got, err := Envelope(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Envelope(nil) = % X, want % X", got, want)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	f := RawFrame{FrameType: 0xA1, Data: make([]byte, 65539)}
	if _, err := Encode(f, false); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if _, err := Envelope(make([]byte, MaxBodyLen+1), true); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, ModeAPI); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes of an oversized frame", buf.Len())
	}

	// The largest body that fits still encodes.
	raw, err := Envelope(make([]byte, MaxBodyLen), false)
	if err != nil {
		t.Fatal(err)
	}
	if raw[1] != 0xFF || raw[2] != 0xFF {
		t.Errorf("length field % X, want FF FF", raw[1:3])
	}
}

// envelope is Envelope for bodies known to fit.
func envelope(body []byte) []byte {
	raw, err := Envelope(body, false)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestDecodeATCommand(t *testing.T) {
	f, err := Decode([]byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49, 0x5F}, ModeAPI)
	if err != nil {
		t.Fatal(err)
	}
	at, ok := f.(ATCommand)
	if !ok {
		t.Fatalf("decoded %T, want ATCommand", f)
	}
	if at.ID != 1 {
		t.Error("invalid frame id", at.ID)
	}
	if at.Command != "NI" {
		t.Error("invalid command", at.Command)
	}
	if at.Parameter != nil {
		t.Error("unexpected parameter", at.Parameter)
	}
}

func TestDecodeATCommandResponse(t *testing.T) {
	// NI response carrying the node identifier " ROUTER".
	body := []byte{0x88, 0x01, 'N', 'I', 0x00, ' ', 'R', 'O', 'U', 'T', 'E', 'R'}
	f, err := Decode(envelope(body), ModeAPI)
	if err != nil {
		t.Fatal(err)
	}
	resp, ok := f.(ATCommandResponse)
	if !ok {
		t.Fatalf("decoded %T, want ATCommandResponse", f)
	}
	if resp.Status != ATStatusOK {
		t.Error("invalid status", resp.Status)
	}
	if string(resp.Value) != " ROUTER" {
		t.Errorf("invalid value %q", resp.Value)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		mode Mode
		want error
	}{
		{"truncated length", []byte{0x7E, 0x00}, ModeAPI, ErrTruncated},
		{"truncated body", []byte{0x7E, 0x00, 0x04, 0x08, 0x01}, ModeAPI, ErrTruncated},
		{"missing checksum", []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49}, ModeAPI, ErrTruncated},
		{"bad checksum", []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49, 0x5E}, ModeAPI, ErrBadChecksum},
		{"truncated escape", []byte{0x7E, 0x00, 0x02, 0x8A, 0x7D}, ModeAPIEscaped, ErrTruncatedEscape},
		{"transparent mode", []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49, 0x5F}, ModeAT, ErrUnsupportedMode},
		{"unknown mode", []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x4E, 0x49, 0x5F}, ModeUnknown, ErrUnsupportedMode},
		{"empty frame", []byte{0x7E, 0x00, 0x00, 0xFF}, ModeAPI, ErrInvalidPayload},
		{"short AT response", envelope([]byte{0x88, 0x01, 'N'}), ModeAPI, ErrInvalidPayload},
		{"short receive packet", envelope([]byte{0x90, 0x00, 0x13, 0xA2}), ModeAPI, ErrInvalidPayload},
		{"no delimiter", []byte{0x00, 0x04, 0x08}, ModeAPI, ErrNoDelimiter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Decode(tc.in, tc.mode)
			if err == nil {
				t.Fatalf("expected error, got frame %v", f)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("error %v is not %v", err, tc.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
		})
	}
}

func TestDecodeTruncatedWrapsEOF(t *testing.T) {
	_, err := Decode([]byte{0x7E, 0x00, 0x04, 0x08}, ModeAPI)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected wrapped io.EOF, got %v", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	body := []byte{0xA1, 0x01, 0x02, 0x03}
	raw := envelope(body)
	f, err := Decode(raw, ModeAPI)
	if err != nil {
		t.Fatal(err)
	}
	rf, ok := f.(RawFrame)
	if !ok {
		t.Fatalf("decoded %T, want RawFrame", f)
	}
	if rf.Type() != FrameType(0xA1) {
		t.Error("invalid frame type", rf.Type())
	}
	if !bytes.Equal(rf.Data, body[1:]) {
		t.Errorf("data % X, want % X", rf.Data, body[1:])
	}
	if !bytes.Equal(Marshal(rf, false), raw) {
		t.Errorf("re-marshalled % X, want % X", Marshal(rf, false), raw)
	}
}

func TestDecodeEscaped(t *testing.T) {
	// A receive packet from an address and with data that both contain
	// reserved bytes.
	f := ReceivePacket{
		Source64: 0x0013A2004011137E,
		Source16: 0x7D11,
		Options:  OptionPacketAcknowledged,
		Data:     []byte{0x13, 0x7E, 'h', 'i'},
	}
	esc := Marshal(f, true)
	if bytes.IndexByte(esc[1:], Delimiter) >= 0 {
		t.Fatalf("escaped frame % X contains a delimiter after the first byte", esc)
	}
	got, err := Decode(esc, ModeAPIEscaped)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Fatalf("decoded %#v, want %#v", got, f)
	}
}

func TestRoundTrip(t *testing.T) {
	frames := []Frame{
		ATCommand{ID: 0x11, Command: "D0", Parameter: []byte{0x05}},
		ATCommandQueue{ATCommand{ID: 0x22, Command: "NI", Parameter: []byte("node")}},
		ATCommandResponse{ID: 0x7E, Command: "SH", Status: ATStatusOK, Value: []byte{0x00, 0x13, 0xA2, 0x00}},
		RemoteATCommand{ID: 3, Dest64: 0x0013A20040A1B2C3, Dest16: Unknown16, Options: RemoteATApplyChanges, Command: "D1", Parameter: []byte{0x04}},
		RemoteATCommandResponse{ID: 3, Source64: 0x0013A20040A1B2C3, Source16: 0x1234, Command: "D1", Status: ATStatusInvalidParameter},
		TransmitRequest{ID: 4, Dest64: Broadcast64, Dest16: Unknown16, Options: TransmitDisableACK, Data: []byte("hello")},
		TransmitStatus{ID: 4, Dest16: 0x1234, Status: DeliveryStatus(0x21), Discovery: 0x02},
		TX64Request{ID: 5, Dest64: 0x0013A20040A1B2C3, Data: []byte{0x11}},
		TX16Request{ID: 6, Dest16: 0x0001, Options: 0x01, Data: []byte{0x13}},
		TXStatus{ID: 6, Status: 0x01},
		ReceivePacket{Source64: 0x0013A20040A1B2C3, Source16: 0xFFFE, Options: OptionBroadcast, Data: []byte("x")},
		RX64{Source64: 0x0013A20040A1B2C3, RSSI: 0x28, Data: []byte{0x7D}},
		RX16{Source16: 0x0002, RSSI: 0x40, Options: OptionBroadcast},
		ExplicitRxIndicator{Source64: 1, Source16: 2, SourceEndpoint: 0xE8, DestEndpoint: 0xE8, ClusterID: 0x0011, ProfileID: 0xC105, Data: []byte{1, 2}},
		IODataSampleRxIndicator{Source64: 0x0013A20040A1B2C3, Source16: 0x5678, Options: 0x01, Sample: []byte{0x01, 0x00, 0x02, 0x00, 0x02}},
		RX64IO{Source64: 0x0013A20040A1B2C3, RSSI: 0x30, Sample: []byte{0x01, 0x02, 0x00}},
		RX16IO{Source16: 0x0003, RSSI: 0x30, Sample: []byte{0x01, 0x02, 0x00}},
		ModemStatus{Status: 0x06},
	}

	for _, mode := range []Mode{ModeAPI, ModeAPIEscaped} {
		for _, f := range frames {
			var buf bytes.Buffer
			if err := Write(&buf, f, mode); err != nil {
				t.Fatal(err)
			}
			got, err := Decode(buf.Bytes(), mode)
			if err != nil {
				t.Fatalf("%s %s: %v", mode, f.Type(), err)
			}
			if !reflect.DeepEqual(got, f) {
				t.Errorf("%s: decoded %#v, want %#v", mode, got, f)
			}
		}
	}
}

func TestWriteUnsupportedMode(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, ModemStatus{}, ModeAT)
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("bytes written in transparent mode", buf.Len())
	}
}

func TestFramerSkipsNoise(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x05)
	stream = append(stream, Marshal(ModemStatus{Status: 0x00}, false)...)
	stream = append(stream, 'x', 'y')
	stream = append(stream, Marshal(ATCommandResponse{ID: 1, Command: "NI"}, false)...)

	fr := NewFramer(bytes.NewReader(stream), ModeAPI)

	f, err := fr.Read()
	if err != nil {
		t.Fatal(err)
	}
	if f.Type() != TypeModemStatus {
		t.Error("invalid first frame", f.Type())
	}
	if fr.Discarded() != 1 {
		t.Error("invalid discard count", fr.Discarded())
	}

	f, err = fr.Read()
	if err != nil {
		t.Fatal(err)
	}
	if f.Type() != TypeATCommandResponse {
		t.Error("invalid second frame", f.Type())
	}
	if fr.Discarded() != 3 {
		t.Error("invalid discard count", fr.Discarded())
	}

	if _, err := fr.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestFramerContinuesAfterBadChecksum(t *testing.T) {
	bad := Marshal(ModemStatus{Status: 0x01}, false)
	bad[len(bad)-1]++
	stream := append(bad, Marshal(ModemStatus{Status: 0x02}, false)...)

	fr := NewFramer(bytes.NewReader(stream), ModeAPI)
	if _, err := fr.Read(); !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("expected ErrBadChecksum, got %v", err)
	}
	f, err := fr.Read()
	if err != nil {
		t.Fatal(err)
	}
	if ms := f.(ModemStatus); ms.Status != 0x02 {
		t.Error("invalid status", ms.Status)
	}
}

func TestDump(t *testing.T) {
	d := Dump(ATCommand{ID: 1, Command: "NI"})
	for _, want := range []string{
		"Start delimiter: 7E",
		"Length: 00 04 (4)",
		"Frame type: 08 (AT Command)",
		"Frame ID: 01 (1)",
		"AT Command: 4E 49 (NI)",
		"Checksum: 5F",
	} {
		if !strings.Contains(d, want) {
			t.Errorf("dump lacks %q:\n%s", want, d)
		}
	}
}

func TestFrameTypeString(t *testing.T) {
	if s := TypeReceivePacket.String(); s != "Receive Packet" {
		t.Error("invalid name", s)
	}
	if s := FrameType(0xA1).String(); s != "Unknown (0xA1)" {
		t.Error("invalid name", s)
	}
	if _, ok := LookupFrameType(0xA1); ok {
		t.Error("0xA1 should not be a known frame type")
	}
	if ft, ok := LookupFrameType(0x88); !ok || ft != TypeATCommandResponse {
		t.Error("invalid lookup of 0x88", ft, ok)
	}
}

func TestParseAddr64(t *testing.T) {
	for _, s := range []string{"0013A20040A1B2C3", "00:13:A2:00:40:A1:B2:C3", "0x0013a20040a1b2c3"} {
		a, err := ParseAddr64(s)
		if err != nil {
			t.Fatal(err)
		}
		if a != 0x0013A20040A1B2C3 {
			t.Errorf("ParseAddr64(%q) = %v", s, a)
		}
	}
	if _, err := ParseAddr64("not hex"); err == nil {
		t.Error("expected error for invalid address")
	}
}
