// Package tcp is an xbee.Transport over a TCP connection, for Wi-Fi and
// cellular modules and for serial bridges such as xbeetcp.
package tcp

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"calmh.dev/xbee"
)

const (
	DefaultDialTimeout = 10 * time.Second
	DefaultReadTimeout = 100 * time.Millisecond
)

type Config struct {
	Addr        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type Conn struct {
	cfg Config

	mut  sync.Mutex
	conn net.Conn
}

var _ xbee.Transport = (*Conn)(nil)

func New(cfg Config) *Conn {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return &Conn{cfg: cfg}
}

func (c *Conn) Open() error {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.conn != nil {
		return xbee.ErrAlreadyOpen
	}
	if c.cfg.Addr == "" {
		return fmt.Errorf("%w: no address given", xbee.ErrInvalidConfig)
	}
	conn, err := net.DialTimeout("tcp", c.cfg.Addr, c.cfg.DialTimeout)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: %v", xbee.ErrPermissionDenied, err)
		}
		return err
	}
	c.conn = conn
	return nil
}

func (c *Conn) Close() error {
	c.mut.Lock()
	conn := c.conn
	c.conn = nil
	c.mut.Unlock()
	if conn == nil {
		return xbee.ErrNotOpen
	}
	return conn.Close()
}

func (c *Conn) IsOpen() bool {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.conn != nil
}

// Read returns (0, nil) when nothing arrived within the read timeout.
func (c *Conn) Read(p []byte) (int, error) {
	conn := c.current()
	if conn == nil {
		return 0, xbee.ErrNotOpen
	}
	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
		return 0, err
	}
	n, err := conn.Read(p)
	if err != nil && n == 0 {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	conn := c.current()
	if conn == nil {
		return 0, xbee.ErrNotOpen
	}
	return conn.Write(p)
}

func (c *Conn) current() net.Conn {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.conn
}
