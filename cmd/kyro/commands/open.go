package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"kyro/internal/domain"
)

// open: read envelopes from stdin, write operations to stdout.
func openCmd() *cobra.Command {
	var (
		f         channelFlags
		keepGoing bool
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt JSON envelopes (one per line) into operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := newResponder(&f)
			if err != nil {
				return err
			}
			defer ch.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return eachLine(cmd.InOrStdin(), func(env domain.EncryptedEnvelope) error {
				op, err := ch.Decrypt(env)
				if err != nil {
					wire.Log.Warn("Envelope rejected",
						"channel_id", env.ChannelID.String(),
						"message_number", env.MessageNumber,
						"error", err,
					)
					if keepGoing {
						return nil
					}
					return err
				}
				return enc.Encode(op)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip envelopes that fail to open")
	return cmd
}
