// Package xbee talks to Digi XBee radio modules in API mode.
//
// A Conn owns a Transport, reads and dispatches incoming frames on a
// background Reader and correlates requests with their responses by frame
// ID. Frame encoding and decoding lives in package api.
package xbee

import (
	"errors"
	"sync"

	"calmh.dev/xbee/api"
)

type Conn struct {
	*Reader

	t   Transport
	cfg Config

	// writeMut serializes frame ID assignment, response registration and
	// the write itself.
	writeMut sync.Mutex
}

// Open opens the transport, unless it is already open, and starts
// reading frames from it.
func Open(t Transport, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !t.IsOpen() {
		if err := t.Open(); err != nil {
			return nil, err
		}
	}
	c := &Conn{
		Reader: NewReader(t, cfg),
		t:      t,
		cfg:    cfg,
	}
	if err := c.Start(); err != nil {
		_ = t.Close()
		return nil, err
	}
	return c, nil
}

// Close stops the reader and closes the transport. It returns the error
// that stopped the reader, if any.
func (c *Conn) Close() error {
	c.Stop()
	return c.Err()
}

func (c *Conn) Mode() api.Mode {
	return c.cfg.Mode
}

// write serializes f and writes it in a single call. The caller holds
// writeMut.
func (c *Conn) write(f api.Frame) error {
	if !c.t.IsOpen() {
		return ErrNotOpen
	}
	buf, err := api.Encode(f, c.cfg.Mode.Escaped())
	if err != nil {
		return err
	}
	n, err := c.t.Write(buf)
	if err != nil {
		if errors.Is(err, ErrNotOpen) {
			return err
		}
		return &IOError{Op: "write", Err: err}
	}
	if n != len(buf) {
		return &IOError{Op: "write", Err: errShortWrite}
	}
	return nil
}

var errShortWrite = errors.New("short write")
