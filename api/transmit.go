package api

import "fmt"

// DeliveryStatus is the outcome reported by TX status frames.
type DeliveryStatus uint8

const (
	DeliverySuccess             DeliveryStatus = 0x00
	DeliveryNoACK               DeliveryStatus = 0x01
	DeliveryCCAFailure          DeliveryStatus = 0x02
	DeliveryPurged              DeliveryStatus = 0x03
	DeliveryInvalidEndpoint     DeliveryStatus = 0x15
	DeliveryNetworkACKFailure   DeliveryStatus = 0x21
	DeliveryNotJoined           DeliveryStatus = 0x22
	DeliverySelfAddressed       DeliveryStatus = 0x23
	DeliveryAddressNotFound     DeliveryStatus = 0x24
	DeliveryRouteNotFound       DeliveryStatus = 0x25
	DeliveryBroadcastRelayFail  DeliveryStatus = 0x26
	DeliveryResourceError       DeliveryStatus = 0x2C
	DeliveryPayloadTooLarge     DeliveryStatus = 0x74
	DeliveryIndirectUnrequested DeliveryStatus = 0x75
)

var deliveryStatusNames = map[DeliveryStatus]string{
	DeliverySuccess:             "Success",
	DeliveryNoACK:               "No acknowledgement received",
	DeliveryCCAFailure:          "CCA failure",
	DeliveryPurged:              "Transmission purged",
	DeliveryInvalidEndpoint:     "Invalid destination endpoint",
	DeliveryNetworkACKFailure:   "Network ACK failure",
	DeliveryNotJoined:           "Not joined to network",
	DeliverySelfAddressed:       "Self-addressed",
	DeliveryAddressNotFound:     "Address not found",
	DeliveryRouteNotFound:       "Route not found",
	DeliveryBroadcastRelayFail:  "Broadcast relay was not heard",
	DeliveryResourceError:       "Resource error",
	DeliveryPayloadTooLarge:     "Data payload too large",
	DeliveryIndirectUnrequested: "Indirect message unrequested",
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", uint8(s))
}

// Transmit options.
const (
	TransmitDisableACK      = 0x01
	TransmitBroadcastPAN    = 0x04
	TransmitAPSEncryption   = 0x20
	TransmitExtendedTimeout = 0x40
)

// TransmitRequest sends RF data to a 64-bit destination (ZigBee, DigiMesh).
type TransmitRequest struct {
	ID              uint8
	Dest64          Addr64
	Dest16          Addr16
	BroadcastRadius uint8
	Options         uint8
	Data            []byte
}

// NewTransmitRequest addresses data to dest using unknown 16-bit routing.
func NewTransmitRequest(dest Addr64, data []byte) TransmitRequest {
	return TransmitRequest{Dest64: dest, Dest16: Unknown16, Data: copyBytes(data)}
}

func (f TransmitRequest) Type() FrameType { return TypeTransmitRequest }
func (f TransmitRequest) FrameID() uint8  { return f.ID }

func (f TransmitRequest) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f TransmitRequest) Payload() []byte {
	b := make([]byte, 0, 13+len(f.Data))
	b = append(b, f.ID)
	b = f.Dest64.appendTo(b)
	b = f.Dest16.appendTo(b)
	b = append(b, f.BroadcastRadius, f.Options)
	return append(b, f.Data...)
}

func (f TransmitRequest) Params() []Param {
	return []Param{
		{Name: "64-bit dest. address", Value: f.Dest64.String()},
		{Name: "16-bit dest. address", Value: f.Dest16.String()},
		{Name: "Broadcast radius", Value: fmt.Sprintf("%02X (%d)", f.BroadcastRadius, f.BroadcastRadius)},
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeTransmitRequest(b []byte) (Frame, error) {
	if err := need(b, 13); err != nil {
		return nil, err
	}
	p := fields{b}
	return TransmitRequest{
		ID:              p.byte(),
		Dest64:          p.addr64(),
		Dest16:          p.addr16(),
		BroadcastRadius: p.byte(),
		Options:         p.byte(),
		Data:            p.rest(),
	}, nil
}

// TransmitStatus reports the outcome of a TransmitRequest.
type TransmitStatus struct {
	ID        uint8
	Dest16    Addr16
	Retries   uint8
	Status    DeliveryStatus
	Discovery uint8
}

func (f TransmitStatus) Type() FrameType { return TypeTransmitStatus }
func (f TransmitStatus) FrameID() uint8  { return f.ID }

func (f TransmitStatus) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f TransmitStatus) Payload() []byte {
	b := make([]byte, 0, 6)
	b = append(b, f.ID)
	b = f.Dest16.appendTo(b)
	return append(b, f.Retries, byte(f.Status), f.Discovery)
}

func (f TransmitStatus) Params() []Param {
	return []Param{
		{Name: "16-bit dest. address", Value: f.Dest16.String()},
		{Name: "Tx. retry count", Value: fmt.Sprintf("%02X (%d)", f.Retries, f.Retries)},
		{Name: "Delivery status", Value: fmt.Sprintf("%02X (%s)", uint8(f.Status), f.Status)},
		{Name: "Discovery status", Value: fmt.Sprintf("%02X", f.Discovery)},
	}
}

func decodeTransmitStatus(b []byte) (Frame, error) {
	if err := need(b, 6); err != nil {
		return nil, err
	}
	p := fields{b}
	return TransmitStatus{
		ID:        p.byte(),
		Dest16:    p.addr16(),
		Retries:   p.byte(),
		Status:    DeliveryStatus(p.byte()),
		Discovery: p.byte(),
	}, nil
}

// TX64Request sends RF data to a 64-bit address (802.15.4).
type TX64Request struct {
	ID      uint8
	Dest64  Addr64
	Options uint8
	Data    []byte
}

func (f TX64Request) Type() FrameType { return TypeTX64Request }
func (f TX64Request) FrameID() uint8  { return f.ID }

func (f TX64Request) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f TX64Request) Payload() []byte {
	b := make([]byte, 0, 10+len(f.Data))
	b = append(b, f.ID)
	b = f.Dest64.appendTo(b)
	b = append(b, f.Options)
	return append(b, f.Data...)
}

func (f TX64Request) Params() []Param {
	return []Param{
		{Name: "64-bit dest. address", Value: f.Dest64.String()},
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeTX64Request(b []byte) (Frame, error) {
	if err := need(b, 10); err != nil {
		return nil, err
	}
	p := fields{b}
	return TX64Request{ID: p.byte(), Dest64: p.addr64(), Options: p.byte(), Data: p.rest()}, nil
}

// TX16Request sends RF data to a 16-bit address (802.15.4).
type TX16Request struct {
	ID      uint8
	Dest16  Addr16
	Options uint8
	Data    []byte
}

func (f TX16Request) Type() FrameType { return TypeTX16Request }
func (f TX16Request) FrameID() uint8  { return f.ID }

func (f TX16Request) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f TX16Request) Payload() []byte {
	b := make([]byte, 0, 4+len(f.Data))
	b = append(b, f.ID)
	b = f.Dest16.appendTo(b)
	b = append(b, f.Options)
	return append(b, f.Data...)
}

func (f TX16Request) Params() []Param {
	return []Param{
		{Name: "16-bit dest. address", Value: f.Dest16.String()},
		{Name: "Options", Value: fmt.Sprintf("%02X", f.Options)},
		dataParam("RF data", f.Data),
	}
}

func decodeTX16Request(b []byte) (Frame, error) {
	if err := need(b, 4); err != nil {
		return nil, err
	}
	p := fields{b}
	return TX16Request{ID: p.byte(), Dest16: p.addr16(), Options: p.byte(), Data: p.rest()}, nil
}

// TXStatus reports the outcome of a TX64Request or TX16Request.
type TXStatus struct {
	ID     uint8
	Status DeliveryStatus
}

func (f TXStatus) Type() FrameType { return TypeTXStatus }
func (f TXStatus) FrameID() uint8  { return f.ID }

func (f TXStatus) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f TXStatus) Payload() []byte {
	return []byte{f.ID, byte(f.Status)}
}

func (f TXStatus) Params() []Param {
	return []Param{
		{Name: "Status", Value: fmt.Sprintf("%02X (%s)", uint8(f.Status), f.Status)},
	}
}

func decodeTXStatus(b []byte) (Frame, error) {
	if err := need(b, 2); err != nil {
		return nil, err
	}
	return TXStatus{ID: b[0], Status: DeliveryStatus(b[1])}, nil
}
