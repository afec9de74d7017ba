package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spysignal/internal/domain"
	"spysignal/internal/services/message"
)

// send <peer-id> [message]: encrypt and send a message or file to a peer.
func sendCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "send <peer-id> [message]",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := domain.ParseUserID(args[0])
			if err != nil {
				return fmt.Errorf("peer id: %w", err)
			}
			payload, err := buildPayload(args[1:], filePath)
			if err != nil {
				return err
			}
			me, err := wire.Me()
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()

			peer, err := wire.Peers.Peer(ctx, peerID)
			if err != nil {
				return err
			}
			rec, err := wire.Messages.SendMessage(ctx, me.UserID, peer, payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent to %s (message %d)\n", peer.Username, rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "send the contents of this file instead of a text message")
	return cmd
}

func buildPayload(text []string, filePath string) (domain.Payload, error) {
	switch {
	case filePath != "" && len(text) > 0:
		return domain.Payload{}, errors.New("give either a message or --file, not both")
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return domain.Payload{}, err
		}
		name := filepath.Base(filePath)
		return domain.FilePayload(name, message.EncodeFileData(name, data)), nil
	case len(text) == 1:
		return domain.TextPayload(text[0]), nil
	default:
		return domain.Payload{}, errors.New("message text or --file is required")
	}
}
