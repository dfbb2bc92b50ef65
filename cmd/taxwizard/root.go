package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taxwizard",
	Short: "taxwizard routes taxpayers to the registration forms they need",
	Long: `taxwizard asks a short eligibility questionnaire and tells the applicant
which registration forms to file, or why registration is blocked.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("catalog", "", "YAML question catalog (built-in catalog when empty)")
	rootCmd.PersistentFlags().String("session-dir", "", "Directory for file sessions (default .taxwizard/sessions)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log engine events to stderr")
}
