package espeakgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// DefaultRepository is the upstream espeak-ng repository.
const DefaultRepository = "https://github.com/espeak-ng/espeak-ng.git"

// Directories under Config.OutDir owned by the source strategy.
const (
	sourceDirName  = "espeak-ng-src"
	installDirName = "espeak-ng-install"
)

// Source build steps, in execution order.
const (
	StepClone     = "clone"
	StepConfigure = "configure"
	StepMake      = "make"
	StepInstall   = "install"
)

// defaultConfigureArgs produce a self-contained static archive: no shared
// library and no optional audio dependencies.
var defaultConfigureArgs = []string{
	"--disable-shared",
	"--enable-static",
	"--with-pcaudiolib=no",
	"--with-sonic=no",
	"--with-speechplayer=no",
}

// sourceRuntimeLibraries are linked dynamically after the static engine.
var sourceRuntimeLibraries = []string{"stdc++", "m", "pthread"}

// SourceStrategy builds espeak-ng from source into an isolated prefix.
//
// The sources are cloned into <OutDir>/espeak-ng-src and installed into
// <OutDir>/espeak-ng-install with the autogen.sh -> configure -> make ->
// make install workflow. The host then links the installed static archive.
//
// An existing clone is reused, so repeated runs only pay for what make
// considers out of date.
type SourceStrategy struct{}

// Name returns the strategy name
func (s *SourceStrategy) Name() string {
	return StrategySource
}

// RequiredTools returns the tools needed to build espeak-ng from source
func (s *SourceStrategy) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: "git", Purpose: "Clones the espeak-ng sources"},
		{Name: "autoconf", Purpose: "Generates the configure script"},
		{Name: "automake", Purpose: "Generates Makefile.in"},
		{Name: "libtool", Alternatives: []string{"libtoolize"}, Purpose: "Builds the static archive"},
		{Name: "make", Alternatives: []string{"gmake"}, Purpose: "Build automation tool"},
		{Name: "gcc", Alternatives: []string{"clang", "cc"}, Purpose: "C/C++ compiler"},
		{Name: "pkg-config", Optional: true, Purpose: "Locates optional dependencies"},
	}
}

// CheckTools verifies that the autotools toolchain is available
func (s *SourceStrategy) CheckTools() error {
	return CheckRequiredTools(s.RequiredTools())
}

// Provision clones, configures, builds and installs espeak-ng
func (s *SourceStrategy) Provision(ctx context.Context, config *Config) (*Result, error) {
	if _, err := NormalizeArch(config.Arch); err != nil {
		return &Result{Strategy: s.Name(), Error: err}, err
	}

	return runCommonProvision(ctx, config, s.Name(), CommonProvisionSteps{
		FetchFunc:     s.clone,
		ConfigureFunc: s.configure,
		BuildFunc:     s.build,
		LinkFunc:      s.Directives,
	})
}

// Clean removes the clone and the install prefix
func (s *SourceStrategy) Clean(_ context.Context, config *Config) error {
	for _, dir := range []string{s.sourceDir(config), s.installDir(config)} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// clone fetches the sources unless a clone already exists
func (s *SourceStrategy) clone(ctx context.Context, config *Config, result *Result) error {
	result.Steps = append(result.Steps, StepClone)
	srcDir := s.sourceDir(config)

	if _, err := os.Stat(filepath.Join(srcDir, ".git")); err == nil {
		config.logger().Info("reusing espeak-ng clone", "dir", srcDir)
		result.Output = append(result.Output, fmt.Sprintf("Using existing clone in %s", srcDir))
		return nil
	}

	// A directory without .git is left over from an interrupted clone.
	if err := sh.Rm(srcDir); err != nil {
		return fmt.Errorf("failed to remove incomplete clone: %w", err)
	}
	if err := os.MkdirAll(config.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	repository := config.Source.Repository
	if repository == "" {
		repository = DefaultRepository
	}

	args := []string{"clone", "--depth", "1"}
	if config.Source.Ref != "" {
		args = append(args, "--branch", config.Source.Ref)
	}
	args = append(args, repository, srcDir)

	config.logger().Info("cloning espeak-ng", "repository", repository, "ref", config.Source.Ref)
	return command{step: StepClone, dir: config.OutDir, name: "git", args: args}.run(ctx, config, result)
}

// configure runs autogen.sh and then ./configure with the install prefix
func (s *SourceStrategy) configure(ctx context.Context, config *Config, result *Result) error {
	result.Steps = append(result.Steps, StepConfigure)
	srcDir := s.sourceDir(config)

	config.logger().Info("configuring espeak-ng", "dir", srcDir)
	if err := (command{step: StepConfigure, dir: srcDir, name: "./autogen.sh"}).run(ctx, config, result); err != nil {
		return err
	}

	args := []string{"--prefix=" + s.installDir(config)}
	args = append(args, defaultConfigureArgs...)
	args = append(args, config.Source.ConfigureArgs...)

	return command{step: StepConfigure, dir: srcDir, name: "./configure", args: args}.run(ctx, config, result)
}

// build runs make and then make install; install never runs after a failed make
func (s *SourceStrategy) build(ctx context.Context, config *Config, result *Result) error {
	srcDir := s.sourceDir(config)
	makeProgram := getMakeProgram()

	var args []string
	if config.Source.Parallel > 0 {
		args = append(args, fmt.Sprintf("-j%d", config.Source.Parallel))
	}

	result.Steps = append(result.Steps, StepMake)
	config.logger().Info("building espeak-ng", "make", makeProgram, "jobs", config.Source.Parallel)
	if err := (command{step: StepMake, dir: srcDir, name: makeProgram, args: args}).run(ctx, config, result); err != nil {
		return err
	}

	result.Steps = append(result.Steps, StepInstall)
	config.logger().Info("installing espeak-ng", "prefix", s.installDir(config))
	return command{step: StepInstall, dir: srcDir, name: makeProgram, args: []string{"install"}}.run(ctx, config, result)
}

// Directives points the linker at the installed static archive. It fails
// when the archive has not been installed yet.
func (s *SourceStrategy) Directives(config *Config) (*LinkDirectives, error) {
	libDir := filepath.Join(s.installDir(config), "lib")
	archive := filepath.Join(libDir, "libespeak-ng.a")
	if _, err := os.Stat(archive); err != nil {
		return nil, fmt.Errorf("static archive not installed: %w", err)
	}

	libs := []Library{{Name: DynamicLibrary, Static: true}}
	for _, name := range sourceRuntimeLibraries {
		libs = append(libs, Library{Name: name})
	}

	return &LinkDirectives{
		SearchPaths:    []string{libDir},
		Libraries:      libs,
		IncludePaths:   []string{filepath.Join(s.installDir(config), "include")},
		RerunIfChanged: []string{config.headerPath()},
	}, nil
}

func (s *SourceStrategy) sourceDir(config *Config) string {
	return filepath.Join(config.OutDir, sourceDirName)
}

func (s *SourceStrategy) installDir(config *Config) string {
	return filepath.Join(config.OutDir, installDirName)
}

// getMakeProgram returns the make program, honouring $MAKE
func getMakeProgram() string {
	if makeProgram := os.Getenv("MAKE"); makeProgram != "" {
		return makeProgram
	}
	return "make"
}
