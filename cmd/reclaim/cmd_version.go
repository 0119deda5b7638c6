package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Fprintln(cmd.OutOrStdout(), "reclaim dev build (use 'make build' for version info)")
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
