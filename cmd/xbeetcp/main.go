package main

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
	"calmh.dev/xbee/transport/serialport"
)

type CLI struct {
	Serial   string `default:"/dev/ttyUSB0" help:"Serial port" env:"XBEE_PORT"`
	Baud     int    `default:"9600" help:"Serial baud rate" env:"XBEE_BAUD"`
	Mode     string `default:"api" enum:"api,escaped" help:"API mode the module is configured for" env:"XBEE_MODE"`
	Listen   string `default:"0.0.0.0:2113" help:"Listen address"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level" env:"LOG_LEVEL"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)
	setupLogging(cli.LogLevel)

	mode, ok := api.ParseMode(cli.Mode)
	if !ok {
		kctx.Fatalf("unknown mode %q", cli.Mode)
	}

	cfg := xbee.DefaultConfig()
	cfg.Mode = mode
	conn, err := xbee.Open(serialport.New(serialport.Config{Name: cli.Serial, BaudRate: cli.Baud}), cfg)
	kctx.FatalIfErrorf(err)
	defer conn.Close()

	frames := NewFanout[api.Frame]()
	conn.AddFrameListener(func(f api.Frame) {
		if n := frames.Publish(f); n > 0 {
			slog.Warn("clients too slow, frame dropped", "type", f.Type(), "clients", n)
		}
	})

	list, err := net.Listen("tcp", cli.Listen)
	kctx.FatalIfErrorf(err)
	slog.Info("listening", "addr", list.Addr(), "serial", cli.Serial, "mode", mode)

	go func() {
		<-conn.Done()
		slog.Error("serial connection lost", "error", conn.Err())
		list.Close()
	}()

	for {
		c, err := list.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				os.Exit(1)
			}
			kctx.FatalIfErrorf(err)
		}
		go handleConn(c, conn, frames)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

// forwarder is the part of xbee.Conn a client handler uses.
type forwarder interface {
	Forward(api.Frame) error
	Mode() api.Mode
}

func handleConn(c net.Conn, conn forwarder, frames *fanout[api.Frame]) {
	l := slog.With("client", c.RemoteAddr())
	l.Info("client connected")
	defer l.Info("client disconnected")

	sub := frames.Listen()
	defer sub.Close()
	defer c.Close()

	go readFrames(c, conn, sub, l)

	mode := conn.Mode()
	for f := range sub.Channel() {
		if err := api.Write(c, f, mode); err != nil {
			l.Debug("write", "error", err)
			return
		}
	}
}

// readFrames forwards frames sent by the client to the module. It closes
// sub when the client goes away, which ends the writer side.
func readFrames(r io.Reader, conn forwarder, sub *fanoutSub[api.Frame], l *slog.Logger) {
	defer sub.Close()
	framer := api.NewFramer(r, conn.Mode())
	for {
		f, err := framer.Read()
		var perr *api.ParseError
		switch {
		case errors.As(err, &perr):
			l.Warn("dropping malformed frame from client", "error", err)
			continue
		case err != nil:
			return
		}
		if err := conn.Forward(f); err != nil {
			l.Warn("forwarding frame", "type", f.Type(), "error", err)
			return
		}
	}
}
