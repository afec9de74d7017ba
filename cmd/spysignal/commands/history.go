package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spysignal/internal/domain"
	"spysignal/internal/services/message"
)

const timeLayout = "2006-01-02 15:04:05"

// history <peer-id>: fetch and decrypt the conversation with a peer.
func historyCmd() *cobra.Command {
	var saveDir string
	cmd := &cobra.Command{
		Use:   "history <peer-id>",
		Short: "Fetch and decrypt your conversation with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := domain.ParseUserID(args[0])
			if err != nil {
				return fmt.Errorf("peer id: %w", err)
			}
			me, err := wire.Me()
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()

			peer, err := wire.Peers.Refresh(ctx, peerID)
			if err != nil {
				return err
			}
			msgs, err := wire.Messages.History(ctx, me.UserID, peer)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				sender := string(peer.Username)
				if m.Record.FromID == me.UserID {
					sender = "you"
				}
				printMessage(out, sender, m)
				if saveDir != "" {
					saveFile(out, saveDir, m)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "write received files into this directory")
	return cmd
}

func printMessage(w io.Writer, sender string, m domain.DecryptedMessage) {
	ts := ""
	if !m.Record.CreatedAt.IsZero() {
		ts = "[" + m.Record.CreatedAt.Local().Format(timeLayout) + "] "
	}
	fmt.Fprintf(w, "%s%s: %s\n", ts, message.EscapeControls(sender), message.Describe(m))
}

// saveFile writes a readable file payload into dir. Failures are reported
// inline so the rest of the conversation still prints.
func saveFile(w io.Writer, dir string, m domain.DecryptedMessage) {
	if !m.Readable || m.Payload.Kind != domain.PayloadFile {
		return
	}
	data, _, err := message.DecodeFileData(m.Payload.Data)
	if err != nil {
		fmt.Fprintf(w, "  (skipped: %v)\n", err)
		return
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fmt.Fprintf(w, "  (not saved: %v)\n", err)
		return
	}
	path := filepath.Join(dir, message.LocalFileName(m))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		fmt.Fprintf(w, "  (not saved: %v)\n", err)
		return
	}
	fmt.Fprintf(w, "  saved %s\n", path)
}
