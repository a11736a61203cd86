package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
	"calmh.dev/xbee/transport/serialport"
	"calmh.dev/xbee/transport/tcp"
)

type CLI struct {
	Port     string        `help:"Serial port the module is attached to" env:"XBEE_PORT"`
	Baud     int           `default:"9600" help:"Serial baud rate" env:"XBEE_BAUD"`
	Addr     string        `help:"TCP address of a module or serial bridge, used instead of a serial port" env:"XBEE_ADDR"`
	Mode     string        `default:"api" enum:"api,escaped" help:"API mode the module is configured for (AP=1 or AP=2)" env:"XBEE_MODE"`
	Timeout  time.Duration `default:"4s" help:"Timeout for AT commands"`
	LogLevel string        `default:"info" enum:"debug,info,warn,error" help:"Log level" env:"LOG_LEVEL"`

	Monitor monitorCmd `cmd:"" default:"1" help:"Monitor the network and export metrics"`
	AT      atCmd      `cmd:"" name:"at" help:"Send one AT command and print the response"`
}

func main() {
	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	ctx := kong.Parse(&cli, kong.BindTo(sigCtx, (*context.Context)(nil)))
	setupLogging(cli.LogLevel)
	ctx.FatalIfErrorf(ctx.Run(&cli))
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

func (cli *CLI) transport() xbee.Transport {
	if cli.Addr != "" {
		return tcp.New(tcp.Config{Addr: cli.Addr})
	}
	return serialport.New(serialport.Config{Name: cli.Port, BaudRate: cli.Baud})
}

func (cli *CLI) config() (xbee.Config, error) {
	mode, ok := api.ParseMode(cli.Mode)
	if !ok {
		return xbee.Config{}, fmt.Errorf("unknown mode %q", cli.Mode)
	}
	cfg := xbee.DefaultConfig()
	cfg.Mode = mode
	cfg.Timeout = cli.Timeout
	return cfg, nil
}

func (cli *CLI) open(tweak func(*xbee.Config)) (*xbee.Conn, error) {
	cfg, err := cli.config()
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	return xbee.Open(cli.transport(), cfg)
}
