package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contriboss/espeakgen"
)

var (
	bindingsFlags      configFlags
	bindingsInstallDir string
)

func init() {
	bindingsFlags.register(bindingsCmd.Flags())
	bindingsCmd.Flags().StringVar(&bindingsInstallDir, "install-dir", "", "copy generated Go bindings into this package directory")
}

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Generate Go bindings from the wrapper header",
	Long:  `Generate Go bindings using the directives of the configured strategy. Nothing is fetched or built; the source strategy requires a previous provision run.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd, &bindingsFlags)
		if err != nil {
			return err
		}

		directives, err := espeakgen.NewRegistry().Directives(config)
		if err != nil {
			return err
		}

		result := &espeakgen.Result{Strategy: config.Strategy, Directives: directives}
		err = espeakgen.GenerateBindings(context.Background(), config, directives, result)
		printOutput(config, result)
		if err != nil {
			return err
		}

		files := result.Bindings
		if bindingsInstallDir != "" {
			if files, err = espeakgen.InstallBindings(config, result.Bindings, bindingsInstallDir); err != nil {
				return err
			}
		}
		for _, file := range files {
			fmt.Fprintln(cmd.OutOrStdout(), file)
		}

		printSummary(result)
		return nil
	},
}
