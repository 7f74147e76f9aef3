package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "doit help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  doit                                               List tasks (first page)
  doit list [common flags] [--status <s>] [--search <text>] [--page <n>] [--refresh]
  doit show [common flags] <ref>
  doit add [common flags] <text...>
  doit create [common flags] <text...>
  doit edit [common flags] <ref> <text...>
  doit done [common flags] <ref>
  doit undone [common flags] <ref>
  doit rm [common flags] <ref>
  doit status [common flags]
  doit shell [common flags]
  doit login [common flags] --username <name> --password <password>
  doit logout [common flags]
  doit help
  doit version

A <ref> is a task number as shown by list, or #<id> for a remote task id.
--status is one of all, completed, pending.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --offline        Serve reads from the local cache and refuse writes
`
