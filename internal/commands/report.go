package commands

import (
	"errors"
	"fmt"
	"io"

	"doit/internal/exitcode"
	"doit/internal/service"
	"doit/internal/tasksync"
)

// report prints err and maps it to an exit code.
func report(errOut io.Writer, err error) int {
	var verr *tasksync.ValidationError
	var werr *tasksync.RemoteWriteFailedError

	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case errors.As(err, &werr):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	case errors.Is(err, tasksync.ErrNoDataAvailable):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the confirmation line unless quiet.
func ok(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
