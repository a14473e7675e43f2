package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/magefile/mage/mg"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/contriboss/espeakgen"
)

var rootCmd = &cobra.Command{
	Use:           "espeakgen",
	Short:         "Provision espeak-ng and generate its Go bindings",
	Long:          `espeakgen locates or builds espeak-ng, prints the linker directives for the host build and generates cgo bindings from headers/wrapper.h`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupOutput(cmd)
	},
}

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// main registers subcommands and persistent flags and executes the root
// command. Failures exit with the status chosen by fatal.
func main() {
	rootCmd.Version = Version

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(bindingsCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to espeakgen.toml (default: ./espeakgen.toml if present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "include external command output")

	if err := rootCmd.Execute(); err != nil {
		err = fatal(err)
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(mg.ExitStatus(err))
	}
}

// fatal attaches the process exit status to err: 2 for an unsupported
// architecture, the child's status for a failed external step, 1 otherwise.
func fatal(err error) error {
	code := 1

	var stepErr *espeakgen.StepError
	switch {
	case errors.Is(err, espeakgen.ErrUnsupportedArch):
		code = 2
	case errors.As(err, &stepErr) && stepErr.ExitStatus > 0:
		code = stepErr.ExitStatus
	}

	return mg.Fatal(code, err)
}

// setupOutput configures colors and the default slog logger from the
// persistent flags.
func setupOutput(cmd *cobra.Command) error {
	colorMode, _ := cmd.Flags().GetString("color")
	switch strings.ToLower(colorMode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (want auto|on|off)", colorMode)
	}

	levelName, _ := cmd.Flags().GetString("log-level")
	level, ok := logLevelMap[strings.ToLower(levelName)]
	if !ok {
		return fmt.Errorf("invalid --log-level value %q", levelName)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: color.NoColor,
	})))
	return nil
}

// isTerminal reports whether f is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
