package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"kyro/internal/crypto"
	"kyro/internal/util/memzero"
)

// rootkey: print a random 32-byte root key as hex.
func rootKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rootkey",
		Short: "Print a fresh random root key (hex) and its fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k [32]byte
			if _, err := rand.Read(k[:]); err != nil {
				return err
			}
			defer memzero.Key(&k)
			fmt.Fprintln(cmd.OutOrStdout(), crypto.EncodeKey(k))
			fmt.Fprintf(cmd.ErrOrStderr(), "Fingerprint: %s\n", crypto.Fingerprint(k[:]))
			return nil
		},
	}
}
