package commands

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kyro/internal/crypto"
	"kyro/internal/domain"
	"kyro/internal/services/manager"
)

// demo: two in-process participants exchange operations, out of order, then
// rekey so the responder can reply.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a short two-party session in process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(out io.Writer) error {
	const alice, bob domain.UserID = "alice", "bob"

	var root domain.RootKey
	if _, err := rand.Read(root[:]); err != nil {
		return err
	}

	aliceSide := wire.Channels
	bobSide := manager.New(wire.Log, wire.Config.ChannelOptions()...)

	id, err := aliceSide.CreateChannel(root)
	if err != nil {
		return err
	}
	if err := bobSide.OpenChannel(id, root); err != nil {
		return err
	}
	for _, m := range []*manager.Manager{aliceSide, bobSide} {
		for _, u := range []domain.UserID{alice, bob} {
			if err := m.JoinChannel(id, u); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(out, "channel %s root %s\n", id, crypto.Fingerprint(root[:]))

	ops := []domain.CollaborationOperation{
		domain.NewFileOpen(alice, "main.go"),
		domain.NewInsert(alice, 0, "package main\n"),
		domain.NewCursorMove(alice, "main.go", 1, 0),
	}
	var envs []domain.EncryptedEnvelope
	for _, op := range ops {
		env, err := aliceSide.Broadcast(id, op)
		if err != nil {
			return err
		}
		envs = append(envs, env)
	}
	for _, i := range []int{2, 0, 1} {
		op, err := bobSide.Receive(envs[i])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bob   <- #%d %s from %s\n", envs[i].MessageNumber, op.Kind, op.UserID)
	}

	// The responder has no sending chain until it mixes in a DH with the initiator.
	alicePriv, alicePub, err := crypto.GenerateX25519()
	if err != nil {
		return err
	}
	bobCh, _ := bobSide.GetChannel(id)
	bobPub, err := bobCh.Rekey(alicePub)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rekey  bob sender key %s\n", crypto.Fingerprint(bobPub[:]))

	reply, err := bobSide.Broadcast(id, domain.NewSelection(bob, domain.Selection{File: "main.go", StartLine: 1, EndLine: 1, EndColumn: 12}))
	if err != nil {
		return err
	}
	aliceCh, _ := aliceSide.GetChannel(id)
	if err := aliceCh.AcceptRekey(alicePriv, bobPub, reply.PreviousChainLength); err != nil {
		return err
	}
	op, err := aliceSide.Receive(reply)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "alice <- #%d %s from %s\n", reply.MessageNumber, op.Kind, op.UserID)

	if _, err := bobSide.Receive(envs[0]); err != nil {
		fmt.Fprintf(out, "bob   replay of #0 rejected: %v\n", err)
	}
	return nil
}
