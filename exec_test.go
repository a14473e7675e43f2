package espeakgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

// fakeCommands replaces execCommandContext with a re-exec of the test
// binary that exits with the status returned by exitCode and prints the
// stdout registered for the command name. onCall, when set, runs in the
// test process for every call, standing in for the command's side effects.
type fakeCommands struct {
	calls    [][]string
	exitCode func(call []string) int
	stdout   map[string]string
	onCall   func(call []string)
}

func installFakeCommands(t *testing.T, fake *fakeCommands) {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	origCmdCtx := execCommandContext
	t.Cleanup(func() { execCommandContext = origCmdCtx })

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		call := append([]string{name}, args...)
		fake.calls = append(fake.calls, call)
		if fake.onCall != nil {
			fake.onCall(call)
		}

		code := 0
		if fake.exitCode != nil {
			code = fake.exitCode(call)
		}

		cmdArgs := []string{"-test.run=TestHelperProcess", "--", strconv.Itoa(code), fake.stdout[name]}
		return exec.CommandContext(ctx, os.Args[0], cmdArgs...) // #nosec G204 - helper process for testing
	}
}

// commandNames returns callName for every recorded call.
func (f *fakeCommands) commandNames() []string {
	var names []string
	for _, call := range f.calls {
		names = append(names, callName(call))
	}
	return names
}

// callName is the program plus its first argument unless that is a flag.
func callName(call []string) string {
	if len(call) > 1 && !strings.HasPrefix(call[1], "-") {
		return call[0] + " " + call[1]
	}
	return call[0]
}

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	origLookPath := execLookPath
	t.Cleanup(func() { execLookPath = origLookPath })

	execLookPath = func(name string) (string, error) {
		for _, tool := range available {
			if tool == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	for i := 0; i < len(os.Args); i++ {
		if os.Args[i] == "--" && i+1 < len(os.Args) {
			code, err := strconv.Atoi(os.Args[i+1])
			if err != nil {
				os.Exit(1)
			}
			if i+2 < len(os.Args) && os.Args[i+2] != "" {
				fmt.Fprint(os.Stdout, os.Args[i+2])
			}
			if code != 0 {
				fmt.Fprintln(os.Stderr, "helper failure")
			}
			os.Exit(code)
		}
	}

	os.Exit(0)
}

func TestCommandRunCapturesFailure(t *testing.T) {
	fake := &fakeCommands{exitCode: func([]string) int { return 3 }}
	installFakeCommands(t, fake)

	result := &Result{}
	err := command{step: StepMake, name: "make", args: []string{"-j2"}}.run(context.Background(), &Config{}, result)

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if stepErr.Step != StepMake {
		t.Errorf("expected step %q, got %q", StepMake, stepErr.Step)
	}
	if stepErr.ExitStatus != 3 {
		t.Errorf("expected exit status 3, got %d", stepErr.ExitStatus)
	}
	if len(result.Output) == 0 || result.Output[len(result.Output)-1] != "helper failure" {
		t.Errorf("expected helper output to be captured, got %v", result.Output)
	}
}

func TestCommandRunSpawnFailure(t *testing.T) {
	origCmdCtx := execCommandContext
	defer func() { execCommandContext = origCmdCtx }()
	execCommandContext = exec.CommandContext

	err := command{step: StepClone, name: "/nonexistent/espeakgen-git"}.run(context.Background(), &Config{}, &Result{})

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if stepErr.ExitStatus != 1 {
		t.Errorf("expected exit status 1 for a command that never ran, got %d", stepErr.ExitStatus)
	}
}

func TestCommandOutputReturnsStdout(t *testing.T) {
	fake := &fakeCommands{stdout: map[string]string{"cc": "int espeak_Cancel(void);"}}
	installFakeCommands(t, fake)

	out, err := command{step: "preprocess", name: "cc", args: []string{"-E"}}.output(context.Background(), &Config{}, &Result{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "int espeak_Cancel(void);" {
		t.Errorf("unexpected stdout %q", out)
	}
}

func TestCommandEnvOrder(t *testing.T) {
	env := commandEnv(map[string]string{"B": "2", "A": "1"}, map[string]string{"A": "3"})
	tail := env[len(env)-3:]

	expected := []string{"A=1", "B=2", "A=3"}
	for i := range expected {
		if tail[i] != expected[i] {
			t.Fatalf("expected env tail %v, got %v", expected, tail)
		}
	}
}
