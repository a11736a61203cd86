// Package serialport is an xbee.Transport for modules attached to a local
// serial port.
package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"calmh.dev/xbee"
)

const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
)

type Config struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration
}

type Port struct {
	cfg Config

	mut  sync.Mutex
	port serial.Port
}

var _ xbee.Transport = (*Port)(nil)

// New returns a closed port. Zero config values are replaced by defaults.
func New(cfg Config) *Port {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return &Port{cfg: cfg}
}

func (p *Port) Open() error {
	p.mut.Lock()
	defer p.mut.Unlock()
	if p.port != nil {
		return xbee.ErrAlreadyOpen
	}
	if p.cfg.Name == "" {
		return fmt.Errorf("%w: no serial port given", xbee.ErrInvalidConfig)
	}

	port, err := serial.Open(p.cfg.Name, &serial.Mode{
		BaudRate: p.cfg.BaudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", p.cfg.Name, mapError(err))
	}
	if err := port.SetReadTimeout(p.cfg.ReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("open %s: %w", p.cfg.Name, mapError(err))
	}
	p.port = port
	return nil
}

func (p *Port) Close() error {
	p.mut.Lock()
	port := p.port
	p.port = nil
	p.mut.Unlock()
	if port == nil {
		return xbee.ErrNotOpen
	}
	return port.Close()
}

func (p *Port) IsOpen() bool {
	p.mut.Lock()
	defer p.mut.Unlock()
	return p.port != nil
}

// Read returns (0, nil) when nothing arrived within the read timeout.
func (p *Port) Read(b []byte) (int, error) {
	port := p.current()
	if port == nil {
		return 0, xbee.ErrNotOpen
	}
	n, err := port.Read(b)
	if err != nil {
		return n, mapError(err)
	}
	return n, nil
}

func (p *Port) Write(b []byte) (int, error) {
	port := p.current()
	if port == nil {
		return 0, xbee.ErrNotOpen
	}
	n, err := port.Write(b)
	if err != nil {
		return n, mapError(err)
	}
	return n, nil
}

func (p *Port) current() serial.Port {
	p.mut.Lock()
	defer p.mut.Unlock()
	return p.port
}

// mapError wraps serial port errors with the matching connection error.
func mapError(err error) error {
	var perr *serial.PortError
	if !errors.As(err, &perr) {
		return err
	}
	switch perr.Code() {
	case serial.PortBusy:
		return fmt.Errorf("%w: %v", xbee.ErrInUse, err)
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %v", xbee.ErrPermissionDenied, err)
	case serial.PortClosed:
		return fmt.Errorf("%w: %v", xbee.ErrNotOpen, err)
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
		serial.InvalidStopBits, serial.InvalidTimeoutValue, serial.InvalidSerialPort, serial.PortNotFound:
		return fmt.Errorf("%w: %v", xbee.ErrInvalidConfig, err)
	}
	return err
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
