package commands

import (
	"context"
	"flag"
	"io"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/output"
	"doit/internal/tasksync"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show connectivity and cache state" }
func (c *StatusCmd) Usage() string     { return "doit status" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	st := output.Status{
		Online:  client.Online(),
		Durable: client.Durable(),
	}
	if synced, ok := client.LastSynced(); ok {
		st.LastSynced = synced
	}

	// The live collection wins once this process has read it.
	if client.Loaded() {
		st.CachedTasks = len(client.Tasks())
	} else if cached, ok := client.CachedTasks(); ok {
		st.CachedTasks = len(cached)
	}

	output.FormatStatus(out, st)
	return exitcode.Success
}
