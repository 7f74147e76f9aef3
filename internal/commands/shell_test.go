package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"doit/internal/commands"
	"doit/internal/config"
	"doit/internal/exitcode"
	"doit/internal/testutil"
)

func runShell(t *testing.T, svc *testutil.FakeService, input string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	cmd := &commands.ShellCmd{In: strings.NewReader(input)}

	cfg := config.Default(t.TempDir())
	cfg.Quiet = quiet

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, newClient(svc, true), nil, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// The collection is read once and later writes patch it in place.
func TestShellCommand_ReusesCollection(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(1, "a", false)
	svc.AddTask(2, "b", false)

	input := "list\nadd buy milk\ndone 1\nrm 2\nlist\nexit\nlist\n"
	stdout, stderr, code := runShell(t, svc, input, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "   1  [ ] a\n   2  [ ] b\n" +
		"   1  [x] a\n   2  [ ] buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if n := svc.Calls("ListTasks"); n != 1 {
		t.Errorf("expected 1 ListTasks call, got %d", n)
	}
}

func TestShellCommand_ErrorsDoNotStop(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(1, "a", false)

	input := "bogus\n\nlist --nope\nrepl\nlogout\nrm 9\nls --status pending\n"
	stdout, stderr, code := runShell(t, svc, input, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{
		"error: unknown command: bogus\n",
		"error: flag provided but not defined: -nope\n",
		"error: already in a shell\n",
		"error: logout is not available in the shell\n",
		"error: task number out of range: 9\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr %q should contain %q", stderr, want)
		}
	}
	if stdout != "   1  [ ] a\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestShellCommand_Prompt(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runShell(t, svc, "version\n", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "doit> doit 0.1.0\ndoit> \n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestShellCommand_Refresh(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(1, "a", false)

	stdout, _, _ := runShell(t, svc, "list\nlist --refresh\n", true)

	if n := svc.Calls("ListTasks"); n != 2 {
		t.Errorf("expected 2 ListTasks calls, got %d", n)
	}
	if stdout != "   1  [ ] a\n   1  [ ] a\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}
