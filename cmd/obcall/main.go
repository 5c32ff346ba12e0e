package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/obcall/internal/cli"
	"github.com/vburojevic/obcall/internal/config"
)

const quickStart = `obcall - outbound call sessions from the terminal

Quick start:
  obcall call -n +12285332612 --name Alice   Place a call
  obcall watch                               Follow it until it ends
  obcall export                              Save contact_<id>.csv

For help:
  obcall --help                              All commands and flags
  obcall schema                              NDJSON output schemas
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; explicit flags still win
	vars := kong.Vars{
		"config_format":     cfg.Format,
		"config_provider":   cfg.Provider,
		"config_state_file": cfg.StateFile,
	}

	ctx := kong.Parse(&c,
		kong.Name("obcall"),
		kong.Description("Place outbound calls and track their status until they end"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
