package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/output"
	"doit/internal/querycache"
	"doit/internal/service"
	"doit/internal/tasksync"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `doit` (no args) and `doit list [flags] [search...]`.
type ListCmd struct {
	page    int
	status  string
	search  string
	refresh bool
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

// SetFilter sets the status and search filters (for testing).
func (c *ListCmd) SetFilter(status, search string) {
	c.status = status
	c.search = search
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "doit list [--status all|completed|pending] [--search <text>] [--page <n>] [--refresh]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.BoolVar(&c.refresh, "refresh", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	status, err := querycache.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	search := c.search
	if search == "" && len(args) > 0 {
		search = strings.Join(args, " ")
	}

	tasks, err := c.tasks(ctx, client)
	if err != nil {
		return report(errOut, err)
	}

	entries := querycache.Filter{Search: search, Status: status}.Apply(tasks)
	if len(entries) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	page, total := querycache.Page(entries, c.page, querycache.PageSize)
	if len(page) == 0 {
		fmt.Fprintf(errOut, "error: page out of range: %d (of %d)\n", c.page, total)
		return exitcode.UserError
	}

	for _, e := range page {
		output.FormatTask(out, e.Num, e.Task)
	}
	if total > 1 && !cfg.Quiet {
		output.FormatPageFooter(out, c.page, total)
	}
	return exitcode.Success
}

// tasks returns the collection, reading it only if this client has not
// loaded it yet or --refresh was given.
func (c *ListCmd) tasks(ctx context.Context, client *tasksync.Client) ([]service.Task, error) {
	if client.Loaded() && !c.refresh {
		return client.Tasks(), nil
	}
	return client.LoadTasks(ctx)
}
