package xbeetest

import (
	"calmh.dev/xbee/api"
)

// ATValues answers local AT commands from a table of values, keyed by
// command. Unknown commands get an invalid command status.
func ATValues(values map[string][]byte) Responder {
	return func(f api.Frame) []api.Frame {
		req, ok := f.(api.ATCommand)
		if !ok {
			return nil
		}
		v, ok := values[req.Command]
		if !ok {
			return []api.Frame{api.ATCommandResponse{ID: req.ID, Command: req.Command, Status: api.ATStatusInvalidCommand}}
		}
		return []api.Frame{api.ATCommandResponse{ID: req.ID, Command: req.Command, Value: v}}
	}
}

// Delivery answers transmit requests with a transmit status.
func Delivery(status api.DeliveryStatus) Responder {
	return func(f api.Frame) []api.Frame {
		req, ok := f.(api.TransmitRequest)
		if !ok || req.ID == 0 {
			return nil
		}
		return []api.Frame{api.TransmitStatus{ID: req.ID, Dest16: 0x0001, Status: status}}
	}
}
