package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"textops/transformations"
)

var listFamily string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available transformations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		found := false
		for _, e := range transformations.Entries() {
			if listFamily != "" && string(e.Family) != listFamily {
				continue
			}
			found = true
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Family, e.Description)
		}
		if !found {
			return fmt.Errorf("no transformations in family %q", listFamily)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listFamily, "family", "", "only list transformations of this family (encoding, format, convert, case, lines, hash)")
	rootCmd.AddCommand(listCmd)
}
