package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/output"
	"doit/internal/tasksync"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"get"} }
func (c *ShowCmd) Synopsis() string  { return "Show one task" }
func (c *ShowCmd) Usage() string     { return "doit show <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	id := ref.ID
	if !ref.ByID {
		task, code := resolveOrReport(ctx, client, args, errOut)
		if code != exitcode.Success {
			return code
		}
		id = task.ID
	}

	// GetTask prefers the remote copy and falls back to the collection.
	task, err := client.GetTask(ctx, id)
	if err != nil {
		return report(errOut, err)
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
