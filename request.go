package xbee

import (
	"context"
	"errors"
	"strings"
	"time"

	"calmh.dev/xbee/api"
)

// Send writes f without waiting for any response. A frame ID is assigned
// if f uses frame IDs and has none; the frame as written is returned.
func (c *Conn) Send(f api.Frame) (api.Frame, error) {
	c.writeMut.Lock()
	defer c.writeMut.Unlock()
	f = assignFrameID(f)
	if err := c.write(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Request writes f and waits for the response carrying the same frame ID.
// A frame ID is assigned if f has none. When ctx expires before a
// response arrives the error is ErrTimeout, or the context's error if it
// was canceled.
func (c *Conn) Request(ctx context.Context, f api.Frame) (api.Frame, error) {
	if _, ok := f.(api.Identified); !ok {
		return nil, ErrNotIdentified
	}

	resp := make(chan api.Frame, 1)
	deliver := func(r api.Frame) {
		select {
		case resp <- r:
		default:
		}
	}

	c.writeMut.Lock()
	req := assignFrameID(f).(api.Identified)
	lid := c.addResponseListener(req.FrameID(), responseMatcher(req), deliver)
	err := c.write(req)
	c.writeMut.Unlock()
	defer c.RemoveFrameListener(lid)

	if err != nil {
		return nil, err
	}

	select {
	case r := <-resp:
		return r, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// SendAndWait is Request with a timeout instead of a context.
func (c *Conn) SendAndWait(f api.Frame, timeout time.Duration) (api.Frame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Request(ctx, f)
}

// responseMatcher returns the acceptance rule for responses to req, in
// addition to the frame ID match. AT command responses must echo the
// command that was sent, so that a wrapped frame ID cannot pair a
// response with the wrong command.
func responseMatcher(req api.Frame) func(api.Frame) bool {
	switch req := req.(type) {
	case api.ATCommand:
		return atResponseFor(req.Command)
	case api.ATCommandQueue:
		return atResponseFor(req.Command)
	case api.RemoteATCommand:
		return func(f api.Frame) bool {
			r, ok := f.(api.RemoteATCommandResponse)
			return ok && strings.EqualFold(r.Command, req.Command)
		}
	}
	return nil
}

func atResponseFor(cmd string) func(api.Frame) bool {
	return func(f api.Frame) bool {
		r, ok := f.(api.ATCommandResponse)
		return ok && strings.EqualFold(r.Command, cmd)
	}
}

// Forward writes f exactly as given. Frames with a zero frame ID stay
// that way, so the module sends no status for them.
func (c *Conn) Forward(f api.Frame) error {
	c.writeMut.Lock()
	defer c.writeMut.Unlock()
	return c.write(f)
}
