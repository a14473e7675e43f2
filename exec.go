package espeakgen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// Seams for tests.
var (
	execLookPath       = exec.LookPath
	execCommandContext = exec.CommandContext
)

// command describes one external process invocation.
type command struct {
	step string
	dir  string
	name string
	args []string
	env  map[string]string
}

// run executes cmd to completion, appending its combined output to
// result.Output. A spawn failure or non-zero exit returns a *StepError.
func (c command) run(ctx context.Context, config *Config, result *Result) error {
	cmd := execCommandContext(ctx, c.name, c.args...)
	cmd.Dir = c.dir
	cmd.Env = commandEnv(config.Env, c.env)

	line := append([]string{c.name}, c.args...)
	config.logger().Debug("running command", "step", c.step, "cmd", strings.Join(line, " "), "dir", c.dir)

	output, err := cmd.CombinedOutput()
	lines := splitOutput(output)
	result.Output = append(result.Output, lines...)

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s", strings.Join(line, " ")),
			fmt.Sprintf("Working directory: %s", c.dir))
	}

	if err != nil {
		status := 1
		if sh.CmdRan(err) {
			status = sh.ExitStatus(err)
		}
		return &StepError{
			Step:       c.step,
			Command:    line,
			ExitStatus: status,
			Output:     lines,
			Err:        err,
		}
	}

	return nil
}

// commandEnv returns os.Environ() extended with the given maps, later maps
// winning. Keys are appended in sorted order so the environment is stable.
func commandEnv(envs ...map[string]string) []string {
	env := os.Environ()
	for _, m := range envs {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			env = append(env, fmt.Sprintf("%s=%s", key, m[key]))
		}
	}
	return env
}

// output executes cmd and returns its standard output. Standard error is
// captured into result.Output and the StepError on failure.
func (c command) output(ctx context.Context, config *Config, result *Result) ([]byte, error) {
	cmd := execCommandContext(ctx, c.name, c.args...)
	cmd.Dir = c.dir
	cmd.Env = commandEnv(config.Env, c.env)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	line := append([]string{c.name}, c.args...)
	config.logger().Debug("running command", "step", c.step, "cmd", strings.Join(line, " "), "dir", c.dir)

	stdout, err := cmd.Output()
	lines := splitOutput([]byte(stderr.String()))
	result.Output = append(result.Output, lines...)

	if err != nil {
		status := 1
		if sh.CmdRan(err) {
			status = sh.ExitStatus(err)
		}
		return nil, &StepError{
			Step:       c.step,
			Command:    line,
			ExitStatus: status,
			Output:     lines,
			Err:        err,
		}
	}

	return stdout, nil
}
