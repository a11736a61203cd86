package serialport

import (
	"errors"
	"testing"

	"calmh.dev/xbee"
)

func TestClosedPort(t *testing.T) {
	p := New(Config{Name: "/dev/does-not-exist"})
	if p.IsOpen() {
		t.Fatal("new port should be closed")
	}
	if _, err := p.Write([]byte{0x7E}); !errors.Is(err, xbee.ErrNotOpen) {
		t.Error("expected ErrNotOpen, got", err)
	}
	if _, err := p.Read(make([]byte, 1)); !errors.Is(err, xbee.ErrNotOpen) {
		t.Error("expected ErrNotOpen, got", err)
	}
	if err := p.Close(); !errors.Is(err, xbee.ErrNotOpen) {
		t.Error("expected ErrNotOpen, got", err)
	}
}

func TestOpenWithoutName(t *testing.T) {
	p := New(Config{})
	if err := p.Open(); !errors.Is(err, xbee.ErrInvalidConfig) {
		t.Fatal("expected ErrInvalidConfig, got", err)
	}
}

func TestDefaults(t *testing.T) {
	p := New(Config{Name: "/dev/ttyUSB0"})
	if p.cfg.BaudRate != DefaultBaudRate {
		t.Error("invalid baud rate", p.cfg.BaudRate)
	}
	if p.cfg.ReadTimeout != DefaultReadTimeout {
		t.Error("invalid read timeout", p.cfg.ReadTimeout)
	}
}
