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
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"rename"} }
func (c *EditCmd) Synopsis() string  { return "Change the text of a task" }
func (c *EditCmd) Usage() string     { return "doit edit <ref> <text...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task reference and text required")
		return exitcode.UserError
	}

	task, code := resolveOrReport(ctx, client, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := client.UpdateTask(ctx, task.ID, strings.Join(args[1:], " ")); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
