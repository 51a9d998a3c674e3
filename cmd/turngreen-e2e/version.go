package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/common"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "turngreen-e2e version %s\n", common.GetFullVersion())
		},
	}
}
