package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/contriboss/espeakgen"
)

var cleanFlags configFlags

func init() {
	cleanFlags.register(cleanCmd.Flags())
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build artifacts and generated bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd, &cleanFlags)
		if err != nil {
			return err
		}

		if err := espeakgen.NewRegistry().Clean(context.Background(), config); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", color.CyanString("cleaned"), config.OutDir)
		return nil
	},
}
