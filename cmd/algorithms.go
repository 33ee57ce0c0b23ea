package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samba-sim/samba-sim/sim"
)

// algorithmsCmd lists the strategy catalog
var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available algorithms in batch order",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.AlgorithmNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
