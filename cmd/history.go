package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent extraction outcomes from the audit log",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Auditing is disabled.")
		return nil
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), flagLimit)
	if err != nil {
		return errors.Wrap(err, "loading audit log")
	}

	return printJSON(cmd, entries)
}
