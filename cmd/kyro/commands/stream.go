package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kyro/internal/crypto"
	"kyro/internal/domain"
	"kyro/internal/protocol/channel"
)

type channelFlags struct {
	root    string
	channel string
}

func (f *channelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "hex root key shared by both ends")
	cmd.Flags().StringVar(&f.channel, "channel", "", "channel id (uuid)")
	_ = cmd.MarkFlagRequired("root")
	_ = cmd.MarkFlagRequired("channel")
}

func (f *channelFlags) parse() (domain.ChannelID, domain.RootKey, error) {
	id, err := domain.ParseChannelID(f.channel)
	if err != nil {
		return domain.ChannelID{}, domain.RootKey{}, fmt.Errorf("--channel: %w", err)
	}
	root, err := crypto.ParseRootKey(f.root)
	if err != nil {
		return domain.ChannelID{}, domain.RootKey{}, fmt.Errorf("--root: %w", err)
	}
	return id, root, nil
}

// eachLine decodes one JSON value of type T per input line and hands it to fn.
func eachLine[T any](r io.Reader, fn func(T) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(v); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func newInitiator(f *channelFlags) (*channel.Channel, error) {
	id, root, err := f.parse()
	if err != nil {
		return nil, err
	}
	return channel.NewInitiator(id, root, wire.Config.ChannelOptions()...)
}

func newResponder(f *channelFlags) (*channel.Channel, error) {
	id, root, err := f.parse()
	if err != nil {
		return nil, err
	}
	return channel.NewResponder(id, root, wire.Config.ChannelOptions()...)
}
