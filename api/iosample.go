package api

import "fmt"

// IODataSampleRxIndicator carries an IO sample taken by a remote module.
// The sample is kept as the raw bytes sent by the module.
type IODataSampleRxIndicator struct {
	Source64 Addr64
	Source16 Addr16
	Options  uint8
	Sample   []byte
}

func (f IODataSampleRxIndicator) Type() FrameType { return TypeIODataSampleRxIndicator }

func (f IODataSampleRxIndicator) Payload() []byte {
	b := make([]byte, 0, 11+len(f.Sample))
	b = f.Source64.appendTo(b)
	b = f.Source16.appendTo(b)
	b = append(b, f.Options)
	return append(b, f.Sample...)
}

func (f IODataSampleRxIndicator) Params() []Param {
	return []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		{Name: "16-bit source address", Value: f.Source16.String()},
		{Name: "Receive options", Value: fmt.Sprintf("%02X", f.Options)},
		{Name: "IO sample", Value: hexString(f.Sample)},
	}
}

func decodeIODataSampleRxIndicator(b []byte) (Frame, error) {
	if err := need(b, 11); err != nil {
		return nil, err
	}
	p := fields{b}
	return IODataSampleRxIndicator{
		Source64: p.addr64(),
		Source16: p.addr16(),
		Options:  p.byte(),
		Sample:   p.rest(),
	}, nil
}

// RX64IO carries an IO sample from a 64-bit address (802.15.4).
type RX64IO struct {
	Source64 Addr64
	RSSI     uint8
	Options  uint8
	Sample   []byte
}

func (f RX64IO) Type() FrameType { return TypeRX64IO }

func (f RX64IO) Payload() []byte {
	b := make([]byte, 0, 10+len(f.Sample))
	b = f.Source64.appendTo(b)
	b = append(b, f.RSSI, f.Options)
	return append(b, f.Sample...)
}

func (f RX64IO) Params() []Param {
	return []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		rssiParam(f.RSSI),
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		{Name: "IO sample", Value: hexString(f.Sample)},
	}
}

func decodeRX64IO(b []byte) (Frame, error) {
	if err := need(b, 10); err != nil {
		return nil, err
	}
	p := fields{b}
	return RX64IO{Source64: p.addr64(), RSSI: p.byte(), Options: p.byte(), Sample: p.rest()}, nil
}

// RX16IO carries an IO sample from a 16-bit address (802.15.4).
type RX16IO struct {
	Source16 Addr16
	RSSI     uint8
	Options  uint8
	Sample   []byte
}

func (f RX16IO) Type() FrameType { return TypeRX16IO }

func (f RX16IO) Payload() []byte {
	b := make([]byte, 0, 4+len(f.Sample))
	b = f.Source16.appendTo(b)
	b = append(b, f.RSSI, f.Options)
	return append(b, f.Sample...)
}

func (f RX16IO) Params() []Param {
	return []Param{
		{Name: "16-bit source address", Value: f.Source16.String()},
		rssiParam(f.RSSI),
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		{Name: "IO sample", Value: hexString(f.Sample)},
	}
}

func decodeRX16IO(b []byte) (Frame, error) {
	if err := need(b, 4); err != nil {
		return nil, err
	}
	p := fields{b}
	return RX16IO{Source16: p.addr16(), RSSI: p.byte(), Options: p.byte(), Sample: p.rest()}, nil
}
