package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"spysignal/internal/domain"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Publish your public key to the relay under username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ka, err := wire.Identity.LoadOrCreate()
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()

			me, err := wire.Relay.RegisterUser(ctx, domain.Username(args[0]), ka.PublicJWK())
			if err != nil {
				return err
			}
			if err := wire.Accounts.SaveAccountProfile(domain.AccountProfile{
				ServerURL: wire.Config.RelayURL,
				UserID:    me.ID,
				Username:  me.Username,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s (id %s)\nFingerprint: %s\n", me.Username, me.ID, ka.Fingerprint())
			return nil
		},
	}
}
