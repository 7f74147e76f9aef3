package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

const shellPrompt = "doit> "

func init() {
	Register(&ShellCmd{})
}

// ShellCmd runs commands read line by line against one client, so the task
// collection loaded by the first read is reused and patched by later writes.
type ShellCmd struct {
	// In defaults to os.Stdin.
	In io.Reader

	// Registry defaults to DefaultRegistry.
	Registry *Registry
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"repl"} }
func (c *ShellCmd) Synopsis() string  { return "Run commands interactively" }
func (c *ShellCmd) Usage() string     { return "doit shell" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		if !cfg.Quiet {
			fmt.Fprint(out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return exitcode.Success
		}

		c.runLine(ctx, reg, cfg, client, fields, out, errOut)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: reading input: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out)
	}
	return exitcode.Success
}

// runLine dispatches one shell line. Failures are printed and the shell
// carries on.
func (c *ShellCmd) runLine(ctx context.Context, reg *Registry, cfg *config.Config, client *tasksync.Client, fields []string, out, errOut io.Writer) int {
	cmd, found := reg.Find(fields[0])
	if !found {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", fields[0])
		return exitcode.UserError
	}
	switch cmd.Name() {
	case c.Name():
		fmt.Fprintln(errOut, "error: already in a shell")
		return exitcode.UserError
	case "login", "logout":
		// The shell's client holds the session token and the open cache.
		fmt.Fprintf(errOut, "error: %s is not available in the shell\n", cmd.Name())
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(fields[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	return cmd.Run(ctx, cfg, client, fs.Args(), out, errOut)
}
