package espeakgen

import "context"

// runCommonProvision executes the standard fetch -> configure -> build -> link
// sequence.
//
// If any step fails, processing stops, result.Error is set and the error is
// returned with Success=false. Later steps are never run after a failure.
//
// Typical usage in a strategy:
//
//	func (s *MyStrategy) Provision(ctx context.Context, config *Config) (*Result, error) {
//	    return runCommonProvision(ctx, config, s.Name(), CommonProvisionSteps{
//	        FetchFunc:     noStep,
//	        ConfigureFunc: noStep,
//	        BuildFunc:     noStep,
//	        LinkFunc:      s.Directives,
//	    })
//	}
func runCommonProvision(ctx context.Context, config *Config, name string, steps CommonProvisionSteps) (*Result, error) {
	result := &Result{
		Success:  false,
		Strategy: name,
		Output:   []string{},
	}

	for _, step := range []func(context.Context, *Config, *Result) error{
		steps.FetchFunc,
		steps.ConfigureFunc,
		steps.BuildFunc,
	} {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Error = ctxErr
			return result, ctxErr
		}
		if err := step(ctx, config, result); err != nil {
			result.Error = err
			return result, err
		}
	}

	directives, err := steps.LinkFunc(config)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Directives = directives
	result.Success = true
	return result, nil
}

// noStep is used for steps a strategy does not need.
func noStep(context.Context, *Config, *Result) error {
	return nil
}
