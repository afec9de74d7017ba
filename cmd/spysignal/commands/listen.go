package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"spysignal/internal/domain"
)

// listen: print incoming messages as they arrive until interrupted.
func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Follow incoming messages live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := wire.Me()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "listening as %s (ctrl-c to stop)\n", me.Username)
			return wire.Messages.Listen(cmd.Context(), me.UserID, func(m domain.DecryptedMessage) {
				sender := m.Record.FromID.String()
				if p, err := wire.Peers.Peer(cmd.Context(), m.Record.FromID); err == nil {
					sender = string(p.Username)
				}
				printMessage(out, sender, m)
			})
		},
	}
}
