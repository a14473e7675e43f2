package espeakgen

import (
	"errors"
	"strings"
	"testing"
)

func TestProvisionError(t *testing.T) {
	testCases := []struct {
		name     string
		output   []string
		err      error
		expected string
	}{
		{
			name:     "with output",
			output:   []string{"speech.c:12: error", ""},
			err:      errors.New("exit status 2"),
			expected: "make build failed: exit status 2\n\nBuild output:\nspeech.c:12: error",
		},
		{
			name:     "without output",
			err:      errors.New("exit status 2"),
			expected: "make build failed: exit status 2",
		},
		{
			name:     "without error",
			expected: "make build failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProvisionError("make", tc.output, tc.err).Error(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestStepError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := &StepError{
		Step:       StepMake,
		Command:    []string{"make", "-j4"},
		ExitStatus: 2,
		Output:     []string{"ld: cannot find -lsonic"},
		Err:        cause,
	}

	if !errors.Is(err, cause) {
		t.Error("StepError must unwrap to its cause")
	}
	want := "make build failed: make -j4: exit status 2\n\nBuild output:\nld: cannot find -lsonic"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestCheckRequiredTools(t *testing.T) {
	stubLookPath(t, "gmake")

	testCases := []struct {
		name         string
		requirements []ToolRequirement
		expected     string
	}{
		{
			name:         "satisfied by alternative",
			requirements: []ToolRequirement{{Name: "make", Alternatives: []string{"gmake"}}},
		},
		{
			name:         "optional",
			requirements: []ToolRequirement{{Name: "pkg-config", Optional: true}},
		},
		{
			name:         "single",
			requirements: []ToolRequirement{{Name: "git", Purpose: "Clones the espeak-ng sources"}},
			expected:     "git not found in PATH (required for: Clones the espeak-ng sources)",
		},
		{
			name:         "single without purpose",
			requirements: []ToolRequirement{{Name: "git"}},
			expected:     "git not found in PATH",
		},
		{
			name: "multiple",
			requirements: []ToolRequirement{
				{Name: "git", Purpose: "Clones the espeak-ng sources"},
				{Name: "autoconf"},
			},
			expected: "missing required tools: git (Clones the espeak-ng sources), autoconf",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRequiredTools(tc.requirements)
			if tc.expected == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.expected {
				t.Fatalf("expected %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestSplitOutput(t *testing.T) {
	if lines := splitOutput([]byte("a\nb\n")); strings.Join(lines, "|") != "a|b" {
		t.Errorf("unexpected lines %v", lines)
	}
	if lines := splitOutput(nil); lines != nil {
		t.Errorf("expected nil, got %v", lines)
	}
}
