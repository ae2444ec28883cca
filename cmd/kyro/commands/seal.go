package commands

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kyro/internal/domain"
)

// seal: read operations from stdin, write envelopes to stdout.
func sealCmd() *cobra.Command {
	var f channelFlags
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt JSON operations (one per line) into envelopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := newInitiator(&f)
			if err != nil {
				return err
			}
			defer ch.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return eachLine(cmd.InOrStdin(), func(op domain.CollaborationOperation) error {
				if op.ID == uuid.Nil {
					op.ID = uuid.New()
				}
				if op.Timestamp == 0 {
					op.Timestamp = time.Now().UnixMicro()
				}
				env, err := ch.Encrypt(op)
				if err != nil {
					return err
				}
				wire.Log.Debug("Operation sealed",
					"channel_id", env.ChannelID.String(),
					"message_number", env.MessageNumber,
				)
				return enc.Encode(env)
			})
		},
	}
	f.register(cmd)
	return cmd
}
