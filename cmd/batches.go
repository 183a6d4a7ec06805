package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

// newBatchesCmd lists every batch code the harvester knows about, in the
// order they would be discovered.
func newBatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "Lists all known batch codes",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, b := range harvest.AllBatches() {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
		},
	}
}
