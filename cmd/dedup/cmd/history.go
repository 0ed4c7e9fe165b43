package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyDBPath string

// historyCmd groups the import history subcommands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the import history",
	Long: `History manages the record of files that have already been imported.
Each imported file is stored as a fingerprint of its name, size and
modification time; matching files are skipped on re-import unless
--force is used.

Examples:
  dedup history list
  dedup history clear
  dedup history list --history-db /var/lib/dedup/history.db`,
}

// historyListCmd lists recorded import fingerprints
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List previously imported files",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := openTracker(historyDBPath)
		if err != nil {
			return err
		}
		if tracker == nil {
			return fmt.Errorf("history-db path cannot be empty")
		}
		defer tracker.Close()

		fingerprints, err := tracker.History()
		if err != nil {
			return err
		}

		if len(fingerprints) == 0 {
			fmt.Fprintln(os.Stdout, "No imports recorded.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "Recorded imports: %d\n", len(fingerprints))
		for _, fp := range fingerprints {
			fmt.Fprintf(os.Stdout, "  %s\n", fp)
		}
		return nil
	},
}

// historyClearCmd removes the entire import history
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the import history",
	Long: `Clear removes every recorded import fingerprint. After clearing, any
file can be imported again without --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := openTracker(historyDBPath)
		if err != nil {
			return err
		}
		if tracker == nil {
			return fmt.Errorf("history-db path cannot be empty")
		}
		defer tracker.Close()

		if err := tracker.Clear(); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, "Import history cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "history-db", "dedup-history.db", "path to the import history database")
	viper.BindPFlag("history-db-path", historyCmd.PersistentFlags().Lookup("history-db"))
}
