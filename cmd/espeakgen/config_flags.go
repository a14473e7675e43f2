package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/contriboss/espeakgen"
)

// configFlags holds the per-command overrides of the loaded configuration.
type configFlags struct {
	strategy  string
	arch      string
	outDir    string
	static    bool
	header    string
	generator string
	format    string
	jobs      int
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.strategy, "strategy", "s", "", "provisioning strategy (system|toolchain|source)")
	fs.StringVar(&f.arch, "arch", "", "target architecture (aarch64|x86|x86_64 or a GOARCH name)")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "output directory for build artifacts and bindings")
	fs.BoolVar(&f.static, "static", false, "link the static library set")
	fs.StringVar(&f.header, "header", "", "wrapper header translated into bindings")
	fs.StringVarP(&f.generator, "generator", "g", "", "binding generator (c-for-go|cgo)")
	fs.StringVarP(&f.format, "format", "f", "", "directive format (cgo|ldflags|cargo)")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "parallel make jobs for the source strategy")
}

// apply overrides config with every flag set on the command line.
func (f *configFlags) apply(fs *pflag.FlagSet, config *espeakgen.Config) {
	if fs.Changed("strategy") {
		config.Strategy = f.strategy
	}
	if fs.Changed("arch") {
		config.Arch = f.arch
	}
	if fs.Changed("out-dir") {
		config.OutDir = f.outDir
	}
	if fs.Changed("static") {
		config.Static = f.static
	}
	if fs.Changed("header") {
		config.Header = f.header
	}
	if fs.Changed("generator") {
		config.Generator = f.generator
	}
	if fs.Changed("format") {
		config.Format = f.format
	}
	if fs.Changed("jobs") {
		config.Source.Parallel = f.jobs
	}
}

// loadConfig builds the configuration for cmd: file, .env, environment and
// then flags.
func loadConfig(cmd *cobra.Command, flags *configFlags) (*espeakgen.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	verbose, _ := cmd.Flags().GetBool("verbose")

	config, err := espeakgen.ReadConfig(path, envFile)
	if err != nil {
		return nil, err
	}

	if flags != nil {
		flags.apply(cmd.Flags(), config)
	}
	config.Verbose = config.Verbose || verbose

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
