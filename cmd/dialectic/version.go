package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dialectic"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dialectic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dialectic version %s\n", strings.TrimSpace(dialectic.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
