package commands

import (
	"context"
	"flag"
	"io"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "doit done <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, client, true, args, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct{}

func (c *UndoneCmd) Name() string      { return "undone" }
func (c *UndoneCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string  { return "Mark a task pending" }
func (c *UndoneCmd) Usage() string     { return "doit undone <ref>" }
func (c *UndoneCmd) NeedsAuth() bool   { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, client, false, args, out, errOut)
}

func runSetCompleted(ctx context.Context, cfg *config.Config, client *tasksync.Client, completed bool, args []string, out, errOut io.Writer) int {
	task, code := resolveOrReport(ctx, client, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := client.SetCompleted(ctx, task.ID, completed); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
