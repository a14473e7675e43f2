package espeakgen

import "context"

// Strategy names.
const (
	StrategySystem    = "system"
	StrategyToolchain = "toolchain"
	StrategySource    = "source"
)

// Strategy defines how the native library is obtained.
//
// Each strategy is responsible for one way of getting espeak-ng onto the
// linker's search path and must implement these methods to integrate with
// the Registry.
//
// # Lifecycle
//
//  1. Name() - Registry matches this against Config.Strategy
//  2. Provision() - Registry calls this to obtain the library and resolve directives
//  3. Clean() - Optional removal of artifacts under Config.OutDir
//
// Strategies are stateless. The same value may be reused for any number of
// runs, but a single output directory must not be shared by concurrent runs.
type Strategy interface {
	// Name returns the configuration name of this strategy.
	Name() string

	// Provision obtains the library and returns the result.
	//
	// Returns:
	//   - Result with Success=true and Directives set on success
	//   - Result with Success=false and Error on failure
	Provision(ctx context.Context, config *Config) (*Result, error)

	// Directives resolves the linker directives without fetching or
	// building anything.
	Directives(config *Config) (*LinkDirectives, error)

	// Clean removes artifacts the strategy created under config.OutDir.
	// Returns nil if there is nothing to clean.
	Clean(ctx context.Context, config *Config) error
}
