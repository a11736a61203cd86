package xbee

import (
	"context"
	"fmt"

	"calmh.dev/xbee/api"
)

func (c *Conn) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// ATCommand executes an AT command on the local module and returns the
// response value. An empty param queries the current setting.
func (c *Conn) ATCommand(ctx context.Context, cmd string, param []byte) ([]byte, error) {
	req, err := api.NewATCommand(cmd, param)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := c.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := f.(api.ATCommandResponse)
	if resp.Status != api.ATStatusOK {
		return nil, &ATCommandError{Command: cmd, Status: resp.Status}
	}
	return resp.Value, nil
}

// RemoteATCommand executes an AT command on the module at dest, applying
// changes immediately.
func (c *Conn) RemoteATCommand(ctx context.Context, dest api.Addr64, cmd string, param []byte) ([]byte, error) {
	if _, err := api.NewATCommand(cmd, nil); err != nil {
		return nil, err
	}
	req := api.RemoteATCommand{
		Dest64:    dest,
		Dest16:    api.Unknown16,
		Options:   api.RemoteATApplyChanges,
		Command:   cmd,
		Parameter: param,
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := c.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := f.(api.RemoteATCommandResponse)
	if resp.Status != api.ATStatusOK {
		return nil, &ATCommandError{Command: cmd, Status: resp.Status}
	}
	return resp.Value, nil
}

// NodeIdentifier returns the local module's NI string.
func (c *Conn) NodeIdentifier(ctx context.Context) (string, error) {
	v, err := c.ATCommand(ctx, "NI", nil)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SendData transmits data to dest and waits for the delivery status.
// Broadcasts are not acknowledged and return as soon as they are written.
func (c *Conn) SendData(ctx context.Context, dest api.Addr64, data []byte) error {
	req := api.NewTransmitRequest(dest, data)
	if dest == api.Broadcast64 {
		_, err := c.Send(req)
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := c.Request(ctx, req)
	if err != nil {
		return err
	}
	status, ok := f.(api.TransmitStatus)
	if !ok {
		return fmt.Errorf("xbee: unexpected response to transmit request: %s", f.Type())
	}
	if status.Status != api.DeliverySuccess {
		return &TransmitError{Dest: dest, Status: status.Status}
	}
	return nil
}
