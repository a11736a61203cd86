package api

import "fmt"

// ModemStatusCode is the event reported by a ModemStatus frame.
type ModemStatusCode uint8

const (
	ModemHardwareReset        ModemStatusCode = 0x00
	ModemWatchdogReset        ModemStatusCode = 0x01
	ModemJoinedNetwork        ModemStatusCode = 0x02
	ModemDisassociated        ModemStatusCode = 0x03
	ModemCoordinatorStarted   ModemStatusCode = 0x06
	ModemSecurityKeyUpdated   ModemStatusCode = 0x07
	ModemVoltageLimitExceeded ModemStatusCode = 0x0D
	ModemConfigChangedInJoin  ModemStatusCode = 0x11
)

var modemStatusNames = map[ModemStatusCode]string{
	ModemHardwareReset:        "Device was reset",
	ModemWatchdogReset:        "Watchdog timer was reset",
	ModemJoinedNetwork:        "Device joined to network",
	ModemDisassociated:        "Device disassociated",
	ModemCoordinatorStarted:   "Coordinator started",
	ModemSecurityKeyUpdated:   "Network security key was updated",
	ModemVoltageLimitExceeded: "Voltage supply limit exceeded",
	ModemConfigChangedInJoin:  "Modem configuration changed while joining",
}

func (c ModemStatusCode) String() string {
	if name, ok := modemStatusNames[c]; ok {
		return name
	}
	if c >= 0x80 {
		return fmt.Sprintf("Stack error (0x%02X)", uint8(c))
	}
	return fmt.Sprintf("Unknown (0x%02X)", uint8(c))
}

// ModemStatus is sent by the module on status changes such as a reset or
// joining a network.
type ModemStatus struct {
	Status ModemStatusCode
}

func (f ModemStatus) Type() FrameType { return TypeModemStatus }
func (f ModemStatus) Payload() []byte { return []byte{byte(f.Status)} }

func (f ModemStatus) Params() []Param {
	return []Param{{Name: "Modem status", Value: fmt.Sprintf("%02X (%s)", uint8(f.Status), f.Status)}}
}

func decodeModemStatus(b []byte) (Frame, error) {
	if err := need(b, 1); err != nil {
		return nil, err
	}
	return ModemStatus{Status: ModemStatusCode(b[0])}, nil
}
