package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
)

func algorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List identity algorithms and ciphers in this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "ALGORITHM\tCAPABILITIES\tSTATUS")
			for _, alg := range crypto.Algorithms {
				info, _ := alg.Info()
				status := "available"
				if _, err := crypto.Lookup(alg); err != nil {
					status = "unavailable"
				}
				if info.Experimental {
					status += " (experimental)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", alg, info.Capabilities, status)
			}

			fmt.Fprintln(w, "\nCIPHER\tLEGACY\t")
			for _, c := range seal.AllCiphers() {
				fmt.Fprintf(w, "%s\t%t\t\n", c, c.Legacy())
			}
			return w.Flush()
		},
	}
}
