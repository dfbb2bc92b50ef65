package main

import (
	"fmt"

	"github.com/aretw0/taxwizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of taxwizard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taxwizard version %s\n", taxwizard.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
