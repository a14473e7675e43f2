package espeakgen

import (
	"fmt"
	"strings"
)

// ToolChecker is an optional interface for strategies and generators that
// require external tools.
//
// The Registry checks tools before running a strategy so a missing
// autoconf fails the run before anything is cloned.
//
//	if checker, ok := strategy.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this component needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	// Optional tools don't cause errors if missing.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
//	ToolRequirement{
//	    Name: "gcc",
//	    Alternatives: []string{"clang", "cc"},
//	    Purpose: "C compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "git", "make").
	Name string

	// Alternatives are alternative tool names that can satisfy this requirement.
	Alternatives []string

	// Optional indicates this tool is optional and won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// MissingTools returns the names of required tools that are not available.
// A requirement is satisfied by its primary name or any alternative.
func MissingTools(requirements []ToolRequirement) []string {
	var missing []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}

		if !found && !req.Optional {
			missing = append(missing, req.Name)
		}
	}

	return missing
}

// CheckRequiredTools verifies all required tools are available.
//
// # Error Format
//
// Single missing tool:
//
//	git not found in PATH (required for: Clones the espeak-ng sources)
//
// Multiple missing tools:
//
//	missing required tools: git (Clones the espeak-ng sources), make (Build automation tool)
func CheckRequiredTools(requirements []ToolRequirement) error {
	missing := MissingTools(requirements)
	if len(missing) == 0 {
		return nil
	}

	purposes := make(map[string]string, len(requirements))
	for _, req := range requirements {
		purposes[req.Name] = req.Purpose
	}

	described := make([]string, 0, len(missing))
	for _, name := range missing {
		if purpose := purposes[name]; purpose != "" {
			described = append(described, fmt.Sprintf("%s (%s)", name, purpose))
		} else {
			described = append(described, name)
		}
	}

	if len(described) == 1 {
		if purpose := purposes[missing[0]]; purpose != "" {
			return fmt.Errorf("%s not found in PATH (required for: %s)", missing[0], purpose)
		}
		return fmt.Errorf("%s not found in PATH", missing[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(described, ", "))
}
