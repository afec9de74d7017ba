package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spysignal/internal/crypto"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find users on the relay by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			users, err := wire.Relay.SearchUsers(ctx, args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tFINGERPRINT")
			for _, u := range users {
				wire.Peers.Put(u)
				fp := "(invalid key)"
				if pub, err := crypto.ParsePublicJWK(u.PublicKey); err == nil {
					fp = crypto.Fingerprint(pub).String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Username, fp)
			}
			return tw.Flush()
		},
	}
}
