package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/logging"
	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// Exit codes. Every failure, usage errors included, exits 1.
const (
	ExitOK   = 0
	ExitFail = 1
)

// Options carries the resolved config and the process I/O.
type Options struct {
	Config *config.Config

	Out io.Writer
	Err io.Writer

	// Logger defaults to one built from Config on Err.
	Logger *log.Logger
	// StoreOptions are appended when opening the store (tests inject a clock).
	StoreOptions []store.Option
	// Browse runs the interactive list; defaults to ui.Browse.
	Browse func(ui.TaskStore, ui.Theme) (int, error)
}

type runner struct {
	cfg    *config.Config
	p      *ui.Printer
	log    *log.Logger
	sopts  []store.Option
	browse func(ui.TaskStore, ui.Theme) (int, error)
}

func newRunner(opt Options) *runner {
	cfg := opt.Config
	if cfg == nil {
		cfg = &config.Config{
			File:        config.DefaultFile,
			OnMalformed: config.DefaultOnMalformed,
			Theme:       config.DefaultTheme,
			LogLevel:    config.DefaultLogLevel,
			LogFormat:   config.DefaultLogFormat,
		}
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}
	if opt.Logger == nil {
		opt.Logger = logging.FromConfig(opt.Err, cfg.LogLevel, cfg.LogFormat)
	}
	if opt.Browse == nil {
		opt.Browse = func(s ui.TaskStore, th ui.Theme) (int, error) { return ui.Browse(s, th) }
	}
	return &runner{
		cfg:    cfg,
		p:      ui.NewPrinter(opt.Out, opt.Err, cfg.Theme),
		log:    opt.Logger,
		sopts:  opt.StoreOptions,
		browse: opt.Browse,
	}
}

// Run dispatches a subcommand and returns the process exit code.
func Run(args []string, opt Options) int {
	r := newRunner(opt)
	if len(args) == 0 {
		r.printHelp(r.p.Err)
		return ExitFail
	}
	cmd, a := args[0], args[1:]

	var err error
	switch cmd {
	case "help", "-h", "--help":
		r.printHelp(r.p.Out)
		return ExitOK

	case "add":
		err = r.withArgs(cmd, a, 2, "add <title> <description>", r.doAdd)
	case "update":
		err = r.withArgs(cmd, a, 3, "update <id> <title> <description>", r.doUpdate)
	case "delete":
		err = r.withArgs(cmd, a, 1, "delete <id>", r.doDelete)
	case "start":
		err = r.withArgs(cmd, a, 1, "start <id>", r.doStart)
	case "finish":
		err = r.withArgs(cmd, a, 1, "finish <id>", r.doFinish)
	case "get":
		err = r.withArgs(cmd, a, 1, "get <id>", r.doGet)

	case "list", "list-done", "list-todo", "list-progress":
		err = r.withArgs(cmd, a, 0, cmd, func([]string) error { return r.doList(cmd) })
	case "browse":
		err = r.withArgs(cmd, a, 0, cmd, func([]string) error { return r.doBrowse() })
	case "validate":
		err = r.withArgs(cmd, a, 0, cmd, func([]string) error { return r.doValidate() })
	case "config":
		err = r.withArgs(cmd, a, 0, cmd, func([]string) error { return r.doConfig() })
	case "export":
		err = r.doExport(a)

	default:
		r.p.Fail("unknown command: " + cmd)
		fmt.Fprintln(r.p.Err)
		r.printHelp(r.p.Err)
		return ExitFail
	}

	if err != nil {
		r.report(cmd, err)
		return ExitFail
	}
	return ExitOK
}

// withArgs checks the argument count before running fn.
func (r *runner) withArgs(cmd string, a []string, n int, usage string, fn func([]string) error) error {
	if len(a) != n {
		return fmt.Errorf("%w: usage: tasktracker %s", store.ErrInvalidArgument, usage)
	}
	return fn(a)
}

func (r *runner) report(cmd string, err error) {
	r.log.Error("command failed", "cmd", cmd, "err", err)

	var perr *store.PersistenceError
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.p.Fail(err.Error())
		r.p.Hint("Hint: run `tasktracker list` to see valid ids")
	case errors.As(err, &perr):
		r.p.Fail(fmt.Sprintf("%s: could not save %s: %v", cmd, perr.Path, perr.Err))
	case errors.Is(err, store.ErrMalformed):
		r.p.Fail(err.Error())
		r.p.Hint("Hint: fix the file by hand, run `tasktracker validate` for details, or pass --on-malformed reset")
	default:
		r.p.Fail(err.Error())
	}
}

func (r *runner) open() (*store.Store, error) {
	opts := []store.Option{
		store.WithLogger(r.log),
		store.WithMalformedPolicy(r.cfg.MalformedPolicy()),
	}
	return store.Open(r.cfg.File, append(opts, r.sopts...)...)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid task id %q", store.ErrInvalidArgument, s)
	}
	return id, nil
}

func (r *runner) printHelp(w io.Writer) {
	fmt.Fprint(w, `tasktracker - track tasks in a JSON file

Usage:
  tasktracker [flags] <command> [args]

Commands:
  add <title> <description>          Add a task (status todo)
  update <id> <title> <description>  Replace a task's title and description
  delete <id>                        Delete a task
  start <id>                         Mark a task in progress
  finish <id>                        Mark a task done
  list                               List all tasks
  list-done                          List done tasks
  list-todo                          List tasks that are not done
  list-progress                      List in-progress tasks
  get <id>                           Show one task
  browse                             Interactive list (s start, f finish, d delete, e edit, q quit)
  export [--format json|yaml|toml]   Print all tasks in the given format
  validate                           Check the task file without changing it
  config                             Show the effective configuration
  help                               Show this help

Flags:
  --file <path>            Task file (default tasks.json, env TASKTRACKER_FILE)
  --group                  Group list output by status
  --theme <name>           classic | neon | mono
  --on-malformed <policy>  fail | reset (reset backs up the bad file to <file>.corrupt)
  --log-level <level>      debug | info | warn | error
  --log-format <format>    text | json | logfmt
  --config <path>          Use this TOML config instead of the user/project files

Examples:
  tasktracker add "Buy milk" "2% milk"
  tasktracker start 1
  tasktracker list-todo
`)
}
