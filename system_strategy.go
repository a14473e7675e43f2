package espeakgen

import "context"

// SystemStrategy links against libraries pre-installed at the
// architecture-specific system paths.
//
// With Config.Static set it links the full static set from
// /usr/lib/<triple>, /usr/lib/gcc/<triple>/11, /usr/lib and /usr/local/lib.
// Otherwise it links the shared espeak-ng through the linker's default
// search path.
type SystemStrategy struct{}

// Name returns the strategy name
func (s *SystemStrategy) Name() string {
	return StrategySystem
}

// Provision resolves the directives; nothing is fetched or built
func (s *SystemStrategy) Provision(ctx context.Context, config *Config) (*Result, error) {
	return runCommonProvision(ctx, config, s.Name(), CommonProvisionSteps{
		FetchFunc:     noStep,
		ConfigureFunc: noStep,
		BuildFunc:     noStep,
		LinkFunc:      s.Directives,
	})
}

// Clean is a no-op; the strategy creates nothing
func (s *SystemStrategy) Clean(context.Context, *Config) error {
	return nil
}

// Directives resolves the system library directives
func (s *SystemStrategy) Directives(config *Config) (*LinkDirectives, error) {
	return systemDirectives(config, DefaultGCCRoot, nil)
}
