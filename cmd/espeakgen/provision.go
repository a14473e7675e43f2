package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/contriboss/espeakgen"
)

var (
	provisionFlags      configFlags
	provisionInstallDir string
)

func init() {
	provisionFlags.register(provisionCmd.Flags())
	provisionCmd.Flags().StringVar(&provisionInstallDir, "install-dir", "", "copy generated Go bindings into this package directory")
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Obtain espeak-ng, generate bindings and print linker directives",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd, &provisionFlags)
		if err != nil {
			return err
		}

		result, err := espeakgen.NewRegistry().Run(context.Background(), config)
		printOutput(config, result)
		if err != nil {
			return err
		}

		if provisionInstallDir != "" {
			installed, err := espeakgen.InstallBindings(config, result.Bindings, provisionInstallDir)
			if err != nil {
				return err
			}
			for _, path := range installed {
				fmt.Fprintf(os.Stderr, "%s %s\n", color.CyanString("installed"), path)
			}
		}

		if err := espeakgen.Emit(cmd.OutOrStdout(), config.Format, result.Directives); err != nil {
			return err
		}
		printSummary(result)
		return nil
	},
}

// printOutput writes captured external command output to stderr in
// verbose mode.
func printOutput(config *espeakgen.Config, result *espeakgen.Result) {
	if !config.Verbose || result == nil {
		return
	}
	for _, line := range result.Output {
		fmt.Fprintln(os.Stderr, line)
	}
}

func printSummary(result *espeakgen.Result) {
	status := color.New(color.FgGreen, color.Bold).Sprint("ok")
	bindings := fmt.Sprintf("%d binding file(s)", len(result.Bindings))
	if result.Skipped {
		bindings += " (up to date)"
	}
	fmt.Fprintf(os.Stderr, "%s %s strategy, %s\n", status, result.Strategy, bindings)
}
