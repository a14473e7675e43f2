package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/contriboss/espeakgen"
)

var pathsGCCVersions []string

func init() {
	pathsCmd.Flags().StringSliceVar(&pathsGCCVersions, "gcc", nil, "gcc versions to include (default 11)")
}

var pathsCmd = &cobra.Command{
	Use:   "paths [arch]",
	Short: "Print the native library search paths for an architecture",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arch := runtime.GOARCH
		if len(args) == 1 {
			arch = args[0]
		}

		paths, err := espeakgen.SearchPaths(arch, pathsGCCVersions...)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}
