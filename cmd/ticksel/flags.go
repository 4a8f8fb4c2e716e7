package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pablasso/ticksel/internal/cli"
	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/demo"
)

type parseResult struct {
	Options     cli.TUIOptions
	ShowHelp    bool
	ShowVersion bool
	HelpText    string
}

func parseArgs(args []string) (parseResult, error) {
	fs := flag.NewFlagSet("ticksel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", config.DefaultPath, "Path to the config file")
	page := fs.String("page", "", "Drive a saved HTML file instead of a browser")
	url := fs.String("url", "", "Page to open, or the address of the tab to pick")
	controlURL := fs.String("control-url", "", "DevTools websocket of a running browser")
	launch := fs.Bool("launch", false, "Start a browser instead of attaching to one")
	logFile := fs.String("log-file", "", "Write the engine log to this file")
	events := fs.String("events", "", "Append each run's events to this JSONL file")
	demoEnabled := fs.Bool("demo", false, "Drive the built-in demo page")
	demoScenario := fs.String("demo-scenario", string(demo.ScenarioSuccess), "Demo scenario: success|flaky|fail")
	demoSpeed := fs.String("demo-speed", string(demo.SpeedNormal), "Demo page speed: fast|normal|slow")
	showVersion := fs.Bool("version", false, "Show version information")
	showVersionShort := fs.Bool("v", false, "Show version information")

	usage := func() string {
		var b strings.Builder
		fmt.Fprintln(&b, "Usage: ticksel [flags]")
		fmt.Fprintln(&b, "       ticksel <command> [flags]")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Without a command ticksel opens the terminal UI armed on the page.")
		fmt.Fprintln(&b, "Commands: run, watch, validate, init, demo (see `ticksel help`).")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Flags:")
		fs.SetOutput(&b)
		fs.PrintDefaults()
		fs.SetOutput(io.Discard)
		return b.String()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return parseResult{ShowHelp: true, HelpText: usage()}, nil
		}
		return parseResult{}, fmt.Errorf("%v\n\n%s", err, usage())
	}

	if fs.NArg() > 0 {
		return parseResult{}, fmt.Errorf("positional args are not supported\n\n%s", usage())
	}

	if *showVersion || *showVersionShort {
		return parseResult{ShowVersion: true}, nil
	}

	var demoFlagProvided, pageProvided bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "demo-scenario", "demo-speed":
			demoFlagProvided = true
		case "page", "url", "control-url", "launch":
			pageProvided = true
		}
	})

	opts := cli.TUIOptions{
		ConfigPath: *configPath,
		LogFile:    *logFile,
		Events:     *events,
		Page: cli.PageFlags{
			File:       *page,
			URL:        *url,
			ControlURL: *controlURL,
			Launch:     *launch,
		},
	}

	if !*demoEnabled {
		if demoFlagProvided {
			return parseResult{}, fmt.Errorf("--demo-scenario/--demo-speed require --demo\n\n%s", usage())
		}
		return parseResult{Options: opts}, nil
	}

	if pageProvided {
		return parseResult{}, fmt.Errorf("--demo drives its own page and cannot be combined with --page/--url/--control-url/--launch\n\n%s", usage())
	}

	scenario, err := demo.ParseScenario(*demoScenario)
	if err != nil {
		return parseResult{}, fmt.Errorf("%v\n\n%s", err, usage())
	}
	speed, err := demo.ParseSpeed(*demoSpeed)
	if err != nil {
		return parseResult{}, fmt.Errorf("%v\n\n%s", err, usage())
	}

	opts.Demo = true
	opts.DemoScenario = string(scenario)
	opts.DemoSpeed = string(speed)
	return parseResult{Options: opts}, nil
}
