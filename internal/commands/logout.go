package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command. The durable task cache belongs to
// the logged-in user and is removed with the token unless --keep-cache is set.
type LogoutCmd struct {
	keepCache bool
}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials and cached tasks" }
func (c *LogoutCmd) Usage() string     { return "doit logout [common flags] [--keep-cache]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.keepCache, "keep-cache", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	if !c.keepCache {
		if err := os.RemoveAll(cfg.CachePath()); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove task cache: %v\n", err)
			return exitcode.UserError
		}
	}

	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	return ok(out, cfg.Quiet)
}
