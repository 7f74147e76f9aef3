package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "doit add <text...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, client, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct{}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string     { return "doit create <text...>" }
func (c *CreateCmd) NeedsAuth() bool   { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, client, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}

	task, err := client.CreateTask(ctx, strings.Join(args, " "))
	if err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created #%d\n", task.ID)
	}
	return exitcode.Success
}
