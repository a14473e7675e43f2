package espeakgen

import (
	"fmt"
	"strings"
)

// ProvisionError creates a standardized provisioning error with output context.
//
// # Format
//
// With error and output:
//
//	make build failed: exit status 2
//
//	Build output:
//	gcc -c src/libespeak-ng/speech.c
//	speech.c:12: error: ...
//
// With error but no output:
//
//	make build failed: exit status 2
func ProvisionError(step string, output []string, err error) error {
	outputStr := strings.TrimSpace(strings.Join(output, "\n"))

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", step, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", step)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

// StepError reports a failed external step.
type StepError struct {
	Step       string   // Step name (clone, configure, make, install, ...)
	Command    []string // Command line that was run
	ExitStatus int      // Exit status of the child, 1 if it never ran
	Output     []string // Output captured from the child
	Err        error    // Underlying error
}

func (e *StepError) Error() string {
	return ProvisionError(e.Step, e.Output, fmt.Errorf("%s: %w", strings.Join(e.Command, " "), e.Err)).Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// splitOutput turns captured process output into lines, dropping the
// trailing empty line.
func splitOutput(output []byte) []string {
	text := strings.TrimRight(string(output), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
