package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contriboss/espeakgen"
)

var linkFlags configFlags

func init() {
	linkFlags.register(linkCmd.Flags())
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Obtain espeak-ng and print linker directives without generating bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd, &linkFlags)
		if err != nil {
			return err
		}

		result, err := espeakgen.NewRegistry().Provision(context.Background(), config)
		printOutput(config, result)
		if err != nil {
			return err
		}

		return espeakgen.Emit(cmd.OutOrStdout(), config.Format, result.Directives)
	},
}
