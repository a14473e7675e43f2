package espeakgen

import (
	"context"
	"log/slog"
)

// Result contains the output and status of a provisioning run.
//
// After a run completes, this structure provides:
//   - Success status indicating if every step completed without errors
//   - Output lines captured from external processes (stdout/stderr)
//   - Steps in the order they were executed
//   - Directives the host build must pass to the linker
//   - Bindings listing the generated binding files
type Result struct {
	Success      bool            // True if the run completed successfully
	Strategy     string          // Name of the strategy that ran
	Output       []string        // Lines of output from external processes
	Steps        []string        // Executed steps, in order
	Directives   *LinkDirectives // Linker directives for the host build
	Bindings     []string        // Paths of generated binding files
	Skipped      bool            // True if binding generation was a no-op
	MissingTools []string        // Names of required tools that were missing
	Error        error           // Error if the run failed, nil otherwise
}

// SourceConfig controls the source strategy.
type SourceConfig struct {
	Repository    string   `toml:"repository"`     // Git URL of espeak-ng
	Ref           string   `toml:"ref"`            // Branch or tag, empty for the default branch
	ConfigureArgs []string `toml:"configure_args"` // Extra ./configure arguments
	Parallel      int      `toml:"parallel"`       // make -j value (0 = make default)
}

// ToolchainConfig controls per-toolchain-version search path derivation.
type ToolchainConfig struct {
	GCCVersions []string `toml:"gcc_versions"` // Explicit gcc versions, newest first
	GCCRoot     string   `toml:"gcc_root"`     // Root scanned for gcc versions
}

// Config contains configuration for a provisioning run.
//
// Selection:
//   - Strategy: system, toolchain or source
//   - Static: link the static library set instead of the shared espeak-ng
//
// Target:
//   - Arch: target architecture (aarch64, x86, x86_64 or a GOARCH alias)
//   - OutDir: directory owning every generated artifact
//
// Bindings:
//   - Header: wrapper header translated into bindings
//   - Generator: c-for-go or cgo
//   - PackageName: Go package name of the generated bindings
type Config struct {
	Strategy string `toml:"strategy"`
	Arch     string `toml:"arch"`
	OutDir   string `toml:"out_dir"`
	Static   bool   `toml:"static"`

	Header      string `toml:"header"`
	Generator   string `toml:"generator"`
	Format      string `toml:"format"`
	PackageName string `toml:"package"`

	// Libraries overrides the static library set. Order is preserved.
	Libraries []string `toml:"libraries"`

	Source    SourceConfig    `toml:"source"`
	Toolchain ToolchainConfig `toml:"toolchain"`

	Env     map[string]string `toml:"env"` // Environment variables for child processes
	Verbose bool              `toml:"verbose"`

	Logger *slog.Logger `toml:"-"`
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// CommonProvisionSteps defines the fetch -> configure -> build -> link
// pattern shared by all strategies.
//
// Strategies that have nothing to do for a step pass a no-op. LinkFunc is
// always required: it produces the directives for the host build.
type CommonProvisionSteps struct {
	// FetchFunc obtains the sources (e.g., git clone)
	FetchFunc func(ctx context.Context, config *Config, result *Result) error

	// ConfigureFunc prepares the build (e.g., autogen.sh, ./configure)
	ConfigureFunc func(ctx context.Context, config *Config, result *Result) error

	// BuildFunc compiles and installs the library (e.g., make, make install)
	BuildFunc func(ctx context.Context, config *Config, result *Result) error

	// LinkFunc resolves the linker directives
	LinkFunc func(config *Config) (*LinkDirectives, error)
}
