package xbee

import (
	"errors"
	"fmt"

	"calmh.dev/xbee/api"
)

// Connection errors. Transports wrap these so that callers can test for
// them with errors.Is regardless of the transport in use.
var (
	ErrNotOpen          = errors.New("xbee: connection not open")
	ErrAlreadyOpen      = errors.New("xbee: connection already open")
	ErrInUse            = errors.New("xbee: port in use")
	ErrPermissionDenied = errors.New("xbee: permission denied")
	ErrInvalidConfig    = errors.New("xbee: invalid configuration")
)

var (
	ErrTimeout       = errors.New("xbee: timeout waiting for response")
	ErrReaderStopped = errors.New("xbee: reader stopped")
	ErrNotIdentified = errors.New("xbee: frame type carries no frame ID")
)

// IOError is a failed read from or write to the transport.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "xbee: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ATCommandError is returned when a module answers an AT command with a
// status other than OK.
type ATCommandError struct {
	Command string
	Status  api.ATStatus
}

func (e *ATCommandError) Error() string {
	return fmt.Sprintf("xbee: AT command %s: %s", e.Command, e.Status)
}

// TransmitError is returned when a transmit request is not delivered.
type TransmitError struct {
	Dest   api.Addr64
	Status api.DeliveryStatus
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("xbee: transmit to %s: %s", e.Dest, e.Status)
}
