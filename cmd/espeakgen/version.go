package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information, overridable at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Go        string `json:"go"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show espeakgen build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := versionPayload{
			Tool:      "espeakgen",
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			Go:        runtime.Version(),
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			fmt.Fprintf(out, "%s %s\n", payload.Tool, color.New(color.FgYellow, color.Bold).Sprint(payload.Version))
			if payload.GitCommit != "" {
				fmt.Fprintf(out, "commit: %s\n", payload.GitCommit)
			}
			if payload.BuildDate != "" {
				fmt.Fprintf(out, "built:  %s\n", payload.BuildDate)
			}
			fmt.Fprintf(out, "go:     %s\n", payload.Go)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want pretty|json)", versionFormat)
		}
	},
}
