package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
)

type atCmd struct {
	Command string `arg:"" help:"Two letter AT command, e.g. NI"`
	Param   string `help:"Parameter value as hex; empty queries the current value"`
	Remote  string `help:"64-bit address of a remote module to send the command to"`
}

func (c *atCmd) Run(cli *CLI, ctx context.Context) error {
	param, err := hex.DecodeString(strings.ReplaceAll(c.Param, " ", ""))
	if err != nil {
		return fmt.Errorf("parameter: %w", err)
	}

	var req api.Frame
	if c.Remote != "" {
		dest, err := api.ParseAddr64(c.Remote)
		if err != nil {
			return err
		}
		if _, err := api.NewATCommand(c.Command, nil); err != nil {
			return err
		}
		req = api.RemoteATCommand{
			Dest64:    dest,
			Dest16:    api.Unknown16,
			Options:   api.RemoteATApplyChanges,
			Command:   strings.ToUpper(c.Command),
			Parameter: param,
		}
	} else {
		at, err := api.NewATCommand(strings.ToUpper(c.Command), param)
		if err != nil {
			return err
		}
		req = at
	}

	conn, err := cli.open(nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()
	resp, err := conn.Request(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(api.Dump(resp))

	switch resp := resp.(type) {
	case api.ATCommandResponse:
		if resp.Status != api.ATStatusOK {
			return &xbee.ATCommandError{Command: resp.Command, Status: resp.Status}
		}
	case api.RemoteATCommandResponse:
		if resp.Status != api.ATStatusOK {
			return &xbee.ATCommandError{Command: resp.Command, Status: resp.Status}
		}
	}
	return nil
}
