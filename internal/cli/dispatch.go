// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"doit/internal/commands"
	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/service"
	"doit/internal/tasksync"
)

// ClientFactory creates the sync client from config.
// Used to inject the backend and cache during dispatch.
type ClientFactory func(ctx context.Context, cfg *config.Config) (*tasksync.Client, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ClientFactory
}

// NewDispatcher creates a new dispatcher with the given registry and client factory.
func NewDispatcher(registry *commands.Registry, factory ClientFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> first page of the list
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
	offline   bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
	fs.BoolVar(&f.offline, "offline", false, "")
}

// apply overlays the flags on a loaded config. Flags only ever switch
// settings on.
func (f *commonFlags) apply(cfg *config.Config) {
	cfg.Quiet = f.quiet
	cfg.Debug = cfg.Debug || f.debug
	if f.offline {
		cfg.Connectivity.Mode = config.ModeOffline
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", describeFlagError(err))
		return exitcode.UserError
	}

	// A leading "-" that survived parsing was not a known flag
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	common.apply(cfg)

	if !cmd.NeedsAuth() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	if d.factory == nil {
		if !cfg.HasToken() {
			fmt.Fprintln(errOut, "error: not logged in (run: doit login)")
			return exitcode.AuthError
		}
		fmt.Fprintln(errOut, "error: no backend configured")
		return exitcode.BackendError
	}

	client, err := d.factory(ctx, cfg)
	if err != nil {
		if errors.Is(err, service.ErrNotLoggedIn) {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}
	defer client.Close()

	return cmd.Run(ctx, cfg, client, positionalArgs, out, errOut)
}

// describeFlagError rewords a flag package parse error for the user.
func describeFlagError(err error) string {
	msg := err.Error()

	// "flag needs an argument: -page"
	if strings.HasPrefix(msg, "flag needs an argument:") {
		return msg
	}

	if name, found := strings.CutPrefix(msg, "flag provided but not defined: "); found {
		return "unknown flag: " + name
	}

	return msg
}
