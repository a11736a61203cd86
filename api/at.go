package api

import (
	"fmt"
)

// ATStatus is the command status carried by AT command responses.
type ATStatus uint8

const (
	ATStatusOK               ATStatus = 0x00
	ATStatusError            ATStatus = 0x01
	ATStatusInvalidCommand   ATStatus = 0x02
	ATStatusInvalidParameter ATStatus = 0x03
	ATStatusTxFailure        ATStatus = 0x04
)

func (s ATStatus) String() string {
	switch s {
	case ATStatusOK:
		return "OK"
	case ATStatusError:
		return "Error"
	case ATStatusInvalidCommand:
		return "Invalid command"
	case ATStatusInvalidParameter:
		return "Invalid parameter"
	case ATStatusTxFailure:
		return "TX failure"
	}
	return fmt.Sprintf("Unknown status (0x%02X)", uint8(s))
}

// Remote AT command options.
const (
	RemoteATApplyChanges = 0x02
)

func checkCommand(cmd string) error {
	if len(cmd) != 2 {
		return fmt.Errorf("AT command must be two characters, got %q", cmd)
	}
	return nil
}

func commandParam(cmd string) Param {
	return Param{Name: "AT Command", Value: fmt.Sprintf("%s (%s)", hexString([]byte(cmd)), cmd)}
}

// ATCommand queries or sets a parameter on the local module.
type ATCommand struct {
	ID        uint8
	Command   string
	Parameter []byte
}

func NewATCommand(cmd string, param []byte) (ATCommand, error) {
	if err := checkCommand(cmd); err != nil {
		return ATCommand{}, err
	}
	return ATCommand{Command: cmd, Parameter: copyBytes(param)}, nil
}

func (f ATCommand) Type() FrameType { return TypeATCommand }
func (f ATCommand) FrameID() uint8  { return f.ID }

func (f ATCommand) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f ATCommand) Payload() []byte {
	b := make([]byte, 0, 3+len(f.Parameter))
	b = append(b, f.ID)
	b = append(b, f.Command...)
	return append(b, f.Parameter...)
}

func (f ATCommand) Params() []Param {
	ps := []Param{commandParam(f.Command)}
	if len(f.Parameter) > 0 {
		ps = append(ps, dataParam("Parameter", f.Parameter))
	}
	return ps
}

func decodeATCommand(b []byte) (Frame, error) {
	if err := need(b, 3); err != nil {
		return nil, err
	}
	p := fields{b}
	return ATCommand{ID: p.byte(), Command: p.command(), Parameter: p.rest()}, nil
}

// ATCommandQueue is an AT command whose value is only applied once a
// later AT command (or AC) is executed.
type ATCommandQueue struct {
	ATCommand
}

func (f ATCommandQueue) Type() FrameType { return TypeATCommandQueue }

func (f ATCommandQueue) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func decodeATCommandQueue(b []byte) (Frame, error) {
	f, err := decodeATCommand(b)
	if err != nil {
		return nil, err
	}
	return ATCommandQueue{f.(ATCommand)}, nil
}

// ATCommandResponse answers an ATCommand or ATCommandQueue frame.
type ATCommandResponse struct {
	ID      uint8
	Command string
	Status  ATStatus
	Value   []byte
}

func (f ATCommandResponse) Type() FrameType { return TypeATCommandResponse }
func (f ATCommandResponse) FrameID() uint8  { return f.ID }

func (f ATCommandResponse) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f ATCommandResponse) Payload() []byte {
	b := make([]byte, 0, 4+len(f.Value))
	b = append(b, f.ID)
	b = append(b, f.Command...)
	b = append(b, byte(f.Status))
	return append(b, f.Value...)
}

func (f ATCommandResponse) Params() []Param {
	ps := []Param{
		commandParam(f.Command),
		{Name: "Status", Value: fmt.Sprintf("%02X (%s)", uint8(f.Status), f.Status)},
	}
	if len(f.Value) > 0 {
		ps = append(ps, dataParam("Response", f.Value))
	}
	return ps
}

func decodeATCommandResponse(b []byte) (Frame, error) {
	if err := need(b, 4); err != nil {
		return nil, err
	}
	p := fields{b}
	return ATCommandResponse{
		ID:      p.byte(),
		Command: p.command(),
		Status:  ATStatus(p.byte()),
		Value:   p.rest(),
	}, nil
}

// RemoteATCommand queries or sets a parameter on a remote module.
type RemoteATCommand struct {
	ID        uint8
	Dest64    Addr64
	Dest16    Addr16
	Options   uint8
	Command   string
	Parameter []byte
}

func (f RemoteATCommand) Type() FrameType { return TypeRemoteATCommand }
func (f RemoteATCommand) FrameID() uint8  { return f.ID }

func (f RemoteATCommand) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f RemoteATCommand) Payload() []byte {
	b := make([]byte, 0, 14+len(f.Parameter))
	b = append(b, f.ID)
	b = f.Dest64.appendTo(b)
	b = f.Dest16.appendTo(b)
	b = append(b, f.Options)
	b = append(b, f.Command...)
	return append(b, f.Parameter...)
}

func (f RemoteATCommand) Params() []Param {
	ps := []Param{
		{Name: "64-bit dest. address", Value: f.Dest64.String()},
		{Name: "16-bit dest. address", Value: f.Dest16.String()},
		{Name: "Command options", Value: fmt.Sprintf("%02X", f.Options)},
		commandParam(f.Command),
	}
	if len(f.Parameter) > 0 {
		ps = append(ps, dataParam("Parameter", f.Parameter))
	}
	return ps
}

func decodeRemoteATCommand(b []byte) (Frame, error) {
	if err := need(b, 14); err != nil {
		return nil, err
	}
	p := fields{b}
	return RemoteATCommand{
		ID:        p.byte(),
		Dest64:    p.addr64(),
		Dest16:    p.addr16(),
		Options:   p.byte(),
		Command:   p.command(),
		Parameter: p.rest(),
	}, nil
}

// RemoteATCommandResponse answers a RemoteATCommand frame.
type RemoteATCommandResponse struct {
	ID       uint8
	Source64 Addr64
	Source16 Addr16
	Command  string
	Status   ATStatus
	Value    []byte
}

func (f RemoteATCommandResponse) Type() FrameType { return TypeRemoteATCommandResponse }
func (f RemoteATCommandResponse) FrameID() uint8  { return f.ID }

func (f RemoteATCommandResponse) WithFrameID(id uint8) Frame {
	f.ID = id
	return f
}

func (f RemoteATCommandResponse) Payload() []byte {
	b := make([]byte, 0, 14+len(f.Value))
	b = append(b, f.ID)
	b = f.Source64.appendTo(b)
	b = f.Source16.appendTo(b)
	b = append(b, f.Command...)
	b = append(b, byte(f.Status))
	return append(b, f.Value...)
}

func (f RemoteATCommandResponse) Params() []Param {
	ps := []Param{
		{Name: "64-bit source address", Value: f.Source64.String()},
		{Name: "16-bit source address", Value: f.Source16.String()},
		commandParam(f.Command),
		{Name: "Status", Value: fmt.Sprintf("%02X (%s)", uint8(f.Status), f.Status)},
	}
	if len(f.Value) > 0 {
		ps = append(ps, dataParam("Response", f.Value))
	}
	return ps
}

func decodeRemoteATCommandResponse(b []byte) (Frame, error) {
	if err := need(b, 14); err != nil {
		return nil, err
	}
	p := fields{b}
	return RemoteATCommandResponse{
		ID:       p.byte(),
		Source64: p.addr64(),
		Source16: p.addr16(),
		Command:  p.command(),
		Status:   ATStatus(p.byte()),
		Value:    p.rest(),
	}, nil
}
