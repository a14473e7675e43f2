package espeakgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultHeader      = "headers/wrapper.h"
	DefaultOutDir      = "build/espeak-ng"
	DefaultPackageName = "espeak"
	DefaultConfigFile  = "espeakgen.toml"
)

// Environment variables read by ApplyEnv.
const (
	EnvTargetArch = "ESPEAKGEN_TARGET_ARCH"
	EnvOutDir     = "ESPEAKGEN_OUT_DIR"
	EnvStatic     = "ESPEAKGEN_STATIC"
	EnvStrategy   = "ESPEAKGEN_STRATEGY"
	EnvHeader     = "ESPEAKGEN_HEADER"
	EnvGenerator  = "ESPEAKGEN_GENERATOR"
	EnvFormat     = "ESPEAKGEN_FORMAT"
	EnvRepository = "ESPEAKGEN_REPOSITORY"
	EnvRef        = "ESPEAKGEN_REF"
	EnvJobs       = "ESPEAKGEN_JOBS"
	EnvGCCRoot    = "ESPEAKGEN_GCC_ROOT"
)

// ErrUnknownStrategy is returned for an unrecognised strategy name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// DefaultConfig returns the configuration used when nothing is set: the
// system strategy linking the shared espeak-ng for the host architecture.
func DefaultConfig() *Config {
	return &Config{
		Strategy:    StrategySystem,
		Arch:        runtime.GOARCH,
		OutDir:      DefaultOutDir,
		Header:      DefaultHeader,
		Generator:   GeneratorCForGo,
		Format:      FormatCgo,
		PackageName: DefaultPackageName,
		Source: SourceConfig{
			Repository: DefaultRepository,
		},
		Toolchain: ToolchainConfig{
			GCCRoot: DefaultGCCRoot,
		},
	}
}

// LoadConfigFile decodes a TOML file over config.
//
// Keys that do not map to a Config field are rejected so a misspelled
// option never silently falls back to its default.
func LoadConfigFile(path string, config *Config) error {
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("strategy") && strings.TrimSpace(config.Strategy) == "" {
		return fmt.Errorf("%s: strategy must not be empty", path)
	}

	return nil
}

// ApplyEnv overrides config from the process environment.
//
// The target arch falls back to CARGO_CFG_TARGET_ARCH and GOARCH, and the
// output directory to OUT_DIR, so the tool works unchanged when driven by
// Cargo or go generate.
func ApplyEnv(config *Config) error {
	if arch := firstEnv(EnvTargetArch, "CARGO_CFG_TARGET_ARCH", "GOARCH"); arch != "" {
		config.Arch = arch
	}
	if outDir := firstEnv(EnvOutDir, "OUT_DIR"); outDir != "" {
		config.OutDir = outDir
	}

	if value, ok := os.LookupEnv(EnvStatic); ok && value != "" {
		static, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStatic, err)
		}
		config.Static = static
	}

	for env, field := range map[string]*string{
		EnvStrategy:   &config.Strategy,
		EnvHeader:     &config.Header,
		EnvGenerator:  &config.Generator,
		EnvFormat:     &config.Format,
		EnvRepository: &config.Source.Repository,
		EnvRef:        &config.Source.Ref,
		EnvGCCRoot:    &config.Toolchain.GCCRoot,
	} {
		if value := os.Getenv(env); value != "" {
			*field = value
		}
	}

	if value := os.Getenv(EnvJobs); value != "" {
		jobs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJobs, err)
		}
		config.Source.Parallel = jobs
	}

	return nil
}

// LoadConfig is ReadConfig followed by Validate.
func LoadConfig(path, envFile string) (*Config, error) {
	config, err := ReadConfig(path, envFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ReadConfig builds the configuration from defaults, the TOML file at
// path, the .env file at envFile and the process environment, in that
// order of increasing precedence.
//
// An empty path loads DefaultConfigFile when it exists. Missing .env files
// are ignored. The result is not validated so callers can apply further
// overrides first.
func ReadConfig(path, envFile string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := LoadConfigFile(path, config); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the selection values, normalises the arch and makes the
// output directory absolute.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategySystem, StrategyToolchain, StrategySource:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}

	if _, err := GeneratorFor(c.Generator); err != nil {
		return err
	}
	if _, err := FormatDirectives(c.Format, nil); err != nil {
		return err
	}

	arch, err := NormalizeArch(c.Arch)
	if err != nil {
		return err
	}
	c.Arch = arch

	if c.OutDir == "" {
		c.OutDir = DefaultOutDir
	}
	outDir, err := filepath.Abs(c.OutDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	c.OutDir = outDir

	if c.Source.Parallel < 0 {
		return fmt.Errorf("parallel jobs must not be negative, got %d", c.Source.Parallel)
	}

	return nil
}

func (c *Config) headerPath() string {
	if c.Header != "" {
		return c.Header
	}
	return DefaultHeader
}

func (c *Config) packageName() string {
	if c.PackageName != "" {
		return c.PackageName
	}
	return DefaultPackageName
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
