package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Makepad-fr/tasktracker/internal/cli"
	"github.com/Makepad-fr/tasktracker/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Root flags (apply to every subcommand) are registered by config.Load.
	fs := flag.NewFlagSet("tasktracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: tasktracker [flags] <command> [args]  (see `tasktracker help`)")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	cfg, err := config.Load(fs, args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return cli.ExitOK
	case errors.Is(err, config.ErrFlags):
		// flag already reported it
		return cli.ExitFail
	case err != nil:
		fmt.Fprintln(stderr, "tasktracker:", err)
		return cli.ExitFail
	}

	// Hand the remaining args to the CLI runner.
	return cli.Run(fs.Args(), cli.Options{Config: cfg, Out: stdout, Err: stderr})
}
