package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"doit/internal/backend/dummyjson"
	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/tasksync"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string

	// HTTPClient is used for the login request. Defaults to a client with
	// the configured remote timeout.
	HTTPClient *http.Client
}

// SetCredentials sets the username and password (for testing).
func (c *LoginCmd) SetCredentials(username, password string) {
	c.username = username
	c.password = password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the todo service" }
func (c *LoginCmd) Usage() string {
	return "doit login [common flags] --username <name> --password <password>"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, out, errOut io.Writer) int {
	// Check if already logged in (token exists and has not expired)
	if cfg.HasToken() {
		if tok, err := dummyjson.LoadToken(cfg.TokenPath()); err == nil && tok.Valid() {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}
	}

	username := strings.TrimSpace(c.username)
	if username == "" || c.password == "" {
		fmt.Fprintln(errOut, "error: --username and --password required")
		return exitcode.UserError
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Remote.Timeout}
	}

	token, err := dummyjson.Login(ctx, hc, cfg.Remote.BaseURL, username, c.password)
	if err != nil {
		fmt.Fprintf(errOut, "error: login failed: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := dummyjson.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	return ok(out, cfg.Quiet)
}
