package api

import "fmt"

// FrameType is the one-byte discriminator that follows the length field of
// every API frame.
type FrameType uint8

const (
	TypeTX64Request                 FrameType = 0x00
	TypeTX16Request                 FrameType = 0x01
	TypeRemoteATCommandWiFi         FrameType = 0x07
	TypeATCommand                   FrameType = 0x08
	TypeATCommandQueue              FrameType = 0x09
	TypeTransmitRequest             FrameType = 0x10
	TypeExplicitAddressing          FrameType = 0x11
	TypeRemoteATCommand             FrameType = 0x17
	TypeTXSMS                       FrameType = 0x1F
	TypeTXIPv4                      FrameType = 0x20
	TypeSendDataRequest             FrameType = 0x28
	TypeDeviceResponse              FrameType = 0x2A
	TypeBluetoothUnlock             FrameType = 0x2C
	TypeUserDataRelay               FrameType = 0x2D
	TypeSocketCreate                FrameType = 0x40
	TypeSocketOption                FrameType = 0x41
	TypeSocketConnect               FrameType = 0x42
	TypeSocketClose                 FrameType = 0x43
	TypeSocketSend                  FrameType = 0x44
	TypeSocketSendTo                FrameType = 0x45
	TypeSocketBind                  FrameType = 0x46
	TypeRX64                        FrameType = 0x80
	TypeRX16                        FrameType = 0x81
	TypeRX64IO                      FrameType = 0x82
	TypeRX16IO                      FrameType = 0x83
	TypeRemoteATCommandResponseWiFi FrameType = 0x87
	TypeATCommandResponse           FrameType = 0x88
	TypeTXStatus                    FrameType = 0x89
	TypeModemStatus                 FrameType = 0x8A
	TypeTransmitStatus              FrameType = 0x8B
	TypeIODataSampleRxIndicatorWiFi FrameType = 0x8F
	TypeReceivePacket               FrameType = 0x90
	TypeExplicitRxIndicator         FrameType = 0x91
	TypeIODataSampleRxIndicator     FrameType = 0x92
	TypeNodeIdentificationIndicator FrameType = 0x95
	TypeRemoteATCommandResponse     FrameType = 0x97
	TypeRXSMS                       FrameType = 0x9F
	TypeBluetoothUnlockResponse     FrameType = 0xAC
	TypeUserDataRelayOutput         FrameType = 0xAD
	TypeRXIPv4                      FrameType = 0xB0
	TypeSendDataResponse            FrameType = 0xB8
	TypeDeviceRequest               FrameType = 0xB9
	TypeDeviceResponseStatus        FrameType = 0xBA
	TypeSocketCreateResponse        FrameType = 0xC0
	TypeSocketOptionResponse        FrameType = 0xC1
	TypeSocketConnectResponse       FrameType = 0xC2
	TypeSocketCloseResponse         FrameType = 0xC3
	TypeSocketListenResponse        FrameType = 0xC6
	TypeSocketNewIPv4Client         FrameType = 0xCC
	TypeSocketReceive               FrameType = 0xCD
	TypeSocketReceiveFrom           FrameType = 0xCE
	TypeSocketStatus                FrameType = 0xCF
	TypeFrameError                  FrameType = 0xFE
	TypeGeneric                     FrameType = 0xFF
)

var frameTypeNames = map[FrameType]string{
	TypeTX64Request:                 "TX (Transmit) Request 64-bit address",
	TypeTX16Request:                 "TX (Transmit) Request 16-bit address",
	TypeRemoteATCommandWiFi:         "Remote AT Command Request (Wi-Fi)",
	TypeATCommand:                   "AT Command",
	TypeATCommandQueue:              "AT Command Queue",
	TypeTransmitRequest:             "Transmit Request",
	TypeExplicitAddressing:          "Explicit Addressing Command Frame",
	TypeRemoteATCommand:             "Remote AT Command Request",
	TypeTXSMS:                       "TX SMS",
	TypeTXIPv4:                      "TX IPv4",
	TypeSendDataRequest:             "Send Data Request",
	TypeDeviceResponse:              "Device Response",
	TypeBluetoothUnlock:             "Bluetooth Unlock",
	TypeUserDataRelay:               "User Data Relay",
	TypeSocketCreate:                "Socket Create",
	TypeSocketOption:                "Socket Option",
	TypeSocketConnect:               "Socket Connect",
	TypeSocketClose:                 "Socket Close",
	TypeSocketSend:                  "Socket Send",
	TypeSocketSendTo:                "Socket SendTo",
	TypeSocketBind:                  "Socket Bind/Listen",
	TypeRX64:                        "RX (Receive) Packet 64-bit Address",
	TypeRX16:                        "RX (Receive) Packet 16-bit Address",
	TypeRX64IO:                      "IO Data Sample RX 64-bit Address Indicator",
	TypeRX16IO:                      "IO Data Sample RX 16-bit Address Indicator",
	TypeRemoteATCommandResponseWiFi: "Remote AT Command Response (Wi-Fi)",
	TypeATCommandResponse:           "AT Command Response",
	TypeTXStatus:                    "TX (Transmit) Status",
	TypeModemStatus:                 "Modem Status",
	TypeTransmitStatus:              "Transmit Status",
	TypeIODataSampleRxIndicatorWiFi: "IO Data Sample RX Indicator (Wi-Fi)",
	TypeReceivePacket:               "Receive Packet",
	TypeExplicitRxIndicator:         "Explicit RX Indicator",
	TypeIODataSampleRxIndicator:     "IO Data Sample RX Indicator",
	TypeNodeIdentificationIndicator: "Node Identification Indicator",
	TypeRemoteATCommandResponse:     "Remote Command Response",
	TypeRXSMS:                       "RX SMS",
	TypeBluetoothUnlockResponse:     "Bluetooth Unlock Response",
	TypeUserDataRelayOutput:         "User Data Relay Output",
	TypeRXIPv4:                      "RX IPv4",
	TypeSendDataResponse:            "Send Data Response",
	TypeDeviceRequest:               "Device Request",
	TypeDeviceResponseStatus:        "Device Response Status",
	TypeSocketCreateResponse:        "Socket Create Response",
	TypeSocketOptionResponse:        "Socket Option Response",
	TypeSocketConnectResponse:       "Socket Connect Response",
	TypeSocketCloseResponse:         "Socket Close Response",
	TypeSocketListenResponse:        "Socket Listen Response",
	TypeSocketNewIPv4Client:         "Socket New IPv4 Client",
	TypeSocketReceive:               "Socket Receive",
	TypeSocketReceiveFrom:           "Socket Receive From",
	TypeSocketStatus:                "Socket Status",
	TypeFrameError:                  "Frame Error",
	TypeGeneric:                     "Generic",
}

// LookupFrameType returns the frame type for the wire byte b, and false if
// the byte is not a known discriminator.
func LookupFrameType(b byte) (FrameType, bool) {
	t := FrameType(b)
	_, ok := frameTypeNames[t]
	return t, ok
}

// Known reports whether t is in the frame type table.
func (t FrameType) Known() bool {
	_, ok := frameTypeNames[t]
	return ok
}

func (t FrameType) Byte() byte {
	return byte(t)
}

func (t FrameType) String() string {
	if name, ok := frameTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", byte(t))
}
