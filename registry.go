package espeakgen

import (
	"context"
	"fmt"
)

// Registry manages the registration and selection of strategies.
//
// # Usage
//
// Create a registry with all standard strategies:
//
//	registry := espeakgen.NewRegistry()
//
// Or create an empty registry and register custom strategies:
//
//	registry := &espeakgen.Registry{}
//	registry.Register(&MyStrategy{})
//
// Then run it:
//
//	result, err := registry.Run(ctx, config)
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration.
// Register all strategies before use.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry with the standard strategies registered:
//  1. SystemStrategy
//  2. ToolchainStrategy
//  3. SourceStrategy
func NewRegistry() *Registry {
	registry := &Registry{}

	registry.Register(&SystemStrategy{})
	registry.Register(&ToolchainStrategy{})
	registry.Register(&SourceStrategy{})

	return registry
}

// Register adds a strategy. A later strategy with the same name never
// shadows an earlier one.
func (r *Registry) Register(strategy Strategy) {
	r.strategies = append(r.strategies, strategy)
}

// StrategyFor returns the strategy registered under name.
func (r *Registry) StrategyFor(name string) (Strategy, error) {
	for _, strategy := range r.strategies {
		if strategy.Name() == name {
			return strategy, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// ListStrategies returns a copy of all registered strategies.
func (r *Registry) ListStrategies() []Strategy {
	return append([]Strategy{}, r.strategies...)
}

// Provision runs the configured strategy only and returns its directives.
//
// Tools declared by the strategy are checked first; if any is missing the
// strategy is not run and result.MissingTools lists them.
func (r *Registry) Provision(ctx context.Context, config *Config) (*Result, error) {
	strategy, err := r.StrategyFor(config.Strategy)
	if err != nil {
		return &Result{Strategy: config.Strategy, Error: err}, err
	}

	if checker, ok := strategy.(ToolChecker); ok {
		if missing := MissingTools(checker.RequiredTools()); len(missing) > 0 {
			err := fmt.Errorf("%s strategy: %w", strategy.Name(), checker.CheckTools())
			return &Result{Strategy: strategy.Name(), MissingTools: missing, Error: err}, err
		}
	}

	config.logger().Info("provisioning espeak-ng", "strategy", strategy.Name(), "arch", config.Arch, "static", config.Static)

	result, err := strategy.Provision(ctx, config)
	if err != nil {
		// Ensure we have a result even if the strategy didn't return one
		if result == nil {
			result = &Result{Strategy: strategy.Name()}
		}
		result.Success = false
		result.Error = err
		return result, err
	}

	return result, nil
}

// Directives resolves the directives of the configured strategy without
// provisioning.
func (r *Registry) Directives(config *Config) (*LinkDirectives, error) {
	strategy, err := r.StrategyFor(config.Strategy)
	if err != nil {
		return nil, err
	}
	return strategy.Directives(config)
}

// Run provisions the library and then generates the bindings.
//
// Binding generation is the final step of every strategy and only runs
// after the strategy succeeded. Any failure stops the run.
func (r *Registry) Run(ctx context.Context, config *Config) (*Result, error) {
	result, err := r.Provision(ctx, config)
	if err != nil {
		return result, err
	}

	if err := GenerateBindings(ctx, config, result.Directives, result); err != nil {
		result.Success = false
		result.Error = err
		return result, err
	}

	result.Success = true
	return result, nil
}

// Clean removes the artifacts of the configured strategy and the generated
// bindings.
func (r *Registry) Clean(ctx context.Context, config *Config) error {
	strategy, err := r.StrategyFor(config.Strategy)
	if err != nil {
		return err
	}
	if err := strategy.Clean(ctx, config); err != nil {
		return err
	}
	return CleanBindings(config)
}
