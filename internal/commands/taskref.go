package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"doit/internal/exitcode"
	"doit/internal/service"
	"doit/internal/tasksync"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num  int  // 1-based position in the collection, 0 when ByID
	ID   int  // remote id, 0 unless ByID
	ByID bool // true for "#<id>"
}

func (r TaskRef) String() string {
	if r.ByID {
		return "#" + strconv.Itoa(r.ID)
	}
	return strconv.Itoa(r.Num)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from the first arg.
//
// Accepted forms:
//
//	3    third task of the collection, as numbered by list
//	#42  task with remote id 42
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	arg := args[0]
	if id, found := strings.CutPrefix(arg, "#"); found {
		if !isAllDigits(id) {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		n, err := strconv.Atoi(id)
		if err != nil || n < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{ID: n, ByID: true}, nil
	}

	if !isAllDigits(arg) {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	if n < 1 {
		return TaskRef{}, fmt.Errorf("task number out of range: %d", n)
	}
	return TaskRef{Num: n}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// errOutOfRange is returned by resolveTask for a position past the end.
type errOutOfRange int

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", int(e))
}

// resolveTask finds the task a reference points at, loading the collection
// if this client has not read it yet. An id missing from the collection is
// looked up remotely.
func resolveTask(ctx context.Context, client *tasksync.Client, ref TaskRef) (service.Task, error) {
	tasks := client.Tasks()
	if !client.Loaded() {
		var err error
		tasks, err = client.LoadTasks(ctx)
		if err != nil {
			return service.Task{}, err
		}
	}

	if ref.ByID {
		for _, t := range tasks {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return client.GetTask(ctx, ref.ID)
	}

	if ref.Num > len(tasks) {
		return service.Task{}, errOutOfRange(ref.Num)
	}
	return tasks[ref.Num-1], nil
}

// resolveOrReport parses and resolves the task reference in args, printing
// any failure. A non-success code means the caller should return it.
func resolveOrReport(ctx context.Context, client *tasksync.Client, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	task, err := resolveTask(ctx, client, ref)
	if err != nil {
		var rerr errOutOfRange
		if errors.As(err, &rerr) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return service.Task{}, exitcode.UserError
		}
		return service.Task{}, report(errOut, err)
	}
	return task, exitcode.Success
}
