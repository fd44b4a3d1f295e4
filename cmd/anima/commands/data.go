package commands

import (
	"github.com/spf13/cobra"

	"github.com/animahq/anima/pkg/subconscious"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Dump the subconscious memory store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []subconscious.Entry
		if err := apiGet("/api/data?type=subconscious", &entries); err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
}
