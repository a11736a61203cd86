package api

import "fmt"

// ReceivePacket carries RF data received from a remote module (ZigBee,
// DigiMesh).
type ReceivePacket struct {
	Source64 Addr64
	Source16 Addr16
	Options  uint8
	Data     []byte
}

func (f ReceivePacket) Type() FrameType { return TypeReceivePacket }

func (f ReceivePacket) Payload() []byte {
	b := make([]byte, 0, 11+len(f.Data))
	b = f.Source64.appendTo(b)
	b = f.Source16.appendTo(b)
	b = append(b, f.Options)
	return append(b, f.Data...)
}

func (f ReceivePacket) Params() []Param {
	return []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		{Name: "16-bit source address", Value: f.Source16.String()},
		{Name: "Receive options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeReceivePacket(b []byte) (Frame, error) {
	if err := need(b, 11); err != nil {
		return nil, err
	}
	p := fields{b}
	return ReceivePacket{
		Source64: p.addr64(),
		Source16: p.addr16(),
		Options:  p.byte(),
		Data:     p.rest(),
	}, nil
}

func rssiParam(rssi uint8) Param {
	return Param{Name: "RSSI", Value: fmt.Sprintf("%02X (-%d dBm)", rssi, rssi)}
}

// RX64 carries RF data received from a 64-bit address (802.15.4).
type RX64 struct {
	Source64 Addr64
	RSSI     uint8
	Options  uint8
	Data     []byte
}

func (f RX64) Type() FrameType { return TypeRX64 }

func (f RX64) Payload() []byte {
	b := make([]byte, 0, 10+len(f.Data))
	b = f.Source64.appendTo(b)
	b = append(b, f.RSSI, f.Options)
	return append(b, f.Data...)
}

func (f RX64) Params() []Param {
	return []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		rssiParam(f.RSSI),
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeRX64(b []byte) (Frame, error) {
	if err := need(b, 10); err != nil {
		return nil, err
	}
	p := fields{b}
	return RX64{Source64: p.addr64(), RSSI: p.byte(), Options: p.byte(), Data: p.rest()}, nil
}

// RX16 carries RF data received from a 16-bit address (802.15.4).
type RX16 struct {
	Source16 Addr16
	RSSI     uint8
	Options  uint8
	Data     []byte
}

func (f RX16) Type() FrameType { return TypeRX16 }

func (f RX16) Payload() []byte {
	b := make([]byte, 0, 4+len(f.Data))
	b = f.Source16.appendTo(b)
	b = append(b, f.RSSI, f.Options)
	return append(b, f.Data...)
}

func (f RX16) Params() []Param {
	return []Param{
		{Name: "16-bit source address", Value: f.Source16.String()},
		rssiParam(f.RSSI),
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeRX16(b []byte) (Frame, error) {
	if err := need(b, 4); err != nil {
		return nil, err
	}
	p := fields{b}
	return RX16{Source16: p.addr16(), RSSI: p.byte(), Options: p.byte(), Data: p.rest()}, nil
}

// ExplicitRxIndicator is received instead of ReceivePacket when the module
// runs in explicit addressing mode (AO=1).
type ExplicitRxIndicator struct {
	Source64       Addr64
	Source16       Addr16
	SourceEndpoint uint8
	DestEndpoint   uint8
	ClusterID      uint16
	ProfileID      uint16
	Options        uint8
	Data           []byte
}

func (f ExplicitRxIndicator) Type() FrameType { return TypeExplicitRxIndicator }

func (f ExplicitRxIndicator) Payload() []byte {
	b := make([]byte, 0, 17+len(f.Data))
	b = f.Source64.appendTo(b)
	b = f.Source16.appendTo(b)
	b = append(b, f.SourceEndpoint, f.DestEndpoint)
	b = append(b, byte(f.ClusterID>>8), byte(f.ClusterID))
	b = append(b, byte(f.ProfileID>>8), byte(f.ProfileID))
	b = append(b, f.Options)
	return append(b, f.Data...)
}

func (f ExplicitRxIndicator) Params() []Param {
	return []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		{Name: "16-bit source address", Value: f.Source16.String()},
		{Name: "Source endpoint", Value: fmt.Sprintf("%02X", f.SourceEndpoint)},
		{Name: "Dest. endpoint", Value: fmt.Sprintf("%02X", f.DestEndpoint)},
		{Name: "Cluster ID", Value: fmt.Sprintf("%04X", f.ClusterID)},
		{Name: "Profile ID", Value: fmt.Sprintf("%04X", f.ProfileID)},
		{Name: "Receive options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeExplicitRxIndicator(b []byte) (Frame, error) {
	if err := need(b, 17); err != nil {
		return nil, err
	}
	p := fields{b}
	return ExplicitRxIndicator{
		Source64:       p.addr64(),
		Source16:       p.addr16(),
		SourceEndpoint: p.byte(),
		DestEndpoint:   p.byte(),
		ClusterID:      p.uint16(),
		ProfileID:      p.uint16(),
		Options:        p.byte(),
		Data:           p.rest(),
	}, nil
}
