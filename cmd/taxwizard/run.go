package main

import (
	"github.com/aretw0/taxwizard/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the questionnaire interactively",
	Long: `Starts an interactive questionnaire in the terminal.
Named sessions (--session) are saved after every answer and can be resumed later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogPath, _ := cmd.Flags().GetString("catalog")
		sessionDir, _ := cmd.Flags().GetString("session-dir")
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		watchMode, _ := cmd.Flags().GetBool("watch")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.Execute(cmd.Context(), cli.RunOptions{
			CatalogPath: catalogPath,
			SessionID:   sessionID,
			SessionDir:  sessionDir,
			Fresh:       fresh,
			Watch:       watchMode,
			JSON:        jsonMode,
			Debug:       debug,
			In:          cmd.InOrStdin(),
			Out:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	runCmd.Flags().Bool("json", false, "Emit one JSON view per line instead of rendered markdown")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the catalog file on change (requires --catalog)")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
