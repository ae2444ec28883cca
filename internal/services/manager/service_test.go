package manager_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"kyro/internal/domain"
	"kyro/internal/protocol/channel"
	"kyro/internal/services/manager"
)

func rootKey() domain.RootKey {
	var k domain.RootKey
	for i := range k {
		k[i] = 0xA5
	}
	return k
}

func TestManager_BroadcastAndReceive(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a sender and a receiver sharing a root key
	sender := manager.New(log)
	receiver := manager.New(log)
	id, err := sender.CreateChannel(rootKey())
	req.NoError(err)
	req.NoError(receiver.OpenChannel(id, rootKey()))
	req.NoError(sender.JoinChannel(id, "alice"))

	// When alice broadcasts an operation
	op := domain.NewCursorMove("alice", "main.go", 10, 2)
	env, err := sender.Broadcast(id, op)
	req.NoError(err)

	// Then the receiver routes and opens it
	got, err := receiver.Receive(env)
	req.NoError(err)
	req.Equal(op, got)
}

func TestManager_JoinLeaveKeepsIndexConsistent(t *testing.T) {
	req := require.New(t)
	m := manager.New(logs.GetLoggerFromLevel(slog.LevelDebug))

	first, err := m.CreateChannel(rootKey())
	req.NoError(err)
	second, err := m.CreateChannel(rootKey())
	req.NoError(err)

	req.NoError(m.JoinChannel(first, "alice"))
	req.NoError(m.JoinChannel(second, "alice"))
	req.NoError(m.JoinChannel(second, "alice"))
	req.NoError(m.JoinChannel(second, "bob"))
	req.ElementsMatch([]domain.ChannelID{first, second}, m.ChannelsFor("alice"))
	req.ElementsMatch([]domain.ChannelID{second}, m.ChannelsFor("bob"))

	ch, ok := m.GetChannel(second)
	req.True(ok)
	req.Equal([]domain.UserID{"alice", "bob"}, ch.Participants())

	req.NoError(m.LeaveChannel(second, "alice"))
	req.ElementsMatch([]domain.ChannelID{first}, m.ChannelsFor("alice"))
	req.False(ch.HasParticipant("alice"))

	err = m.LeaveChannel(second, "alice")
	req.ErrorIs(err, manager.ErrParticipantNotFound)

	req.NoError(m.LeaveChannel(first, "alice"))
	req.Empty(m.ChannelsFor("alice"))
}

func TestManager_UnknownChannel(t *testing.T) {
	req := require.New(t)
	m := manager.New(logs.GetLoggerFromLevel(slog.LevelDebug))
	unknown := domain.NewChannelID()

	req.ErrorIs(m.JoinChannel(unknown, "alice"), manager.ErrChannelNotFound)
	req.ErrorIs(m.LeaveChannel(unknown, "alice"), manager.ErrChannelNotFound)
	req.ErrorIs(m.CloseChannel(unknown), manager.ErrChannelNotFound)

	_, err := m.Broadcast(unknown, domain.NewInsert("alice", 0, "x"))
	req.ErrorIs(err, manager.ErrChannelNotFound)

	_, err = m.Receive(domain.EncryptedEnvelope{ChannelID: unknown})
	req.ErrorIs(err, manager.ErrChannelNotFound)

	_, ok := m.GetChannel(unknown)
	req.False(ok)
}

func TestManager_OpenChannelTwiceFails(t *testing.T) {
	req := require.New(t)
	m := manager.New(logs.GetLoggerFromLevel(slog.LevelDebug))
	id := domain.NewChannelID()

	req.NoError(m.OpenChannel(id, rootKey()))
	req.ErrorIs(m.OpenChannel(id, rootKey()), manager.ErrChannelExists)
}

func TestManager_CloseChannelScrubsIndex(t *testing.T) {
	req := require.New(t)
	m := manager.New(logs.GetLoggerFromLevel(slog.LevelDebug))

	id, err := m.CreateChannel(rootKey())
	req.NoError(err)
	req.NoError(m.JoinChannel(id, "alice"))
	ch, _ := m.GetChannel(id)

	req.NoError(m.CloseChannel(id))
	req.Empty(m.ChannelsFor("alice"))
	req.Equal(0, m.Len())

	_, err = ch.Encrypt(domain.NewInsert("alice", 0, "x"))
	req.ErrorIs(err, channel.ErrChannelClosed)
}

func TestManager_ReceiveFailureIsOpaque(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sender := manager.New(log)
	receiver := manager.New(log)

	id, err := sender.CreateChannel(rootKey())
	req.NoError(err)
	var other domain.RootKey
	req.NoError(receiver.OpenChannel(id, other))

	env, err := sender.Broadcast(id, domain.NewInsert("alice", 0, "x"))
	req.NoError(err)
	_, err = receiver.Receive(env)
	req.ErrorIs(err, channel.ErrDecryptionFailed)
}

func TestManager_ConcurrentBroadcastUsesUniqueNumbers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelInfo)
	sender := manager.New(log)
	receiver := manager.New(log)

	id, err := sender.CreateChannel(rootKey())
	req.NoError(err)
	req.NoError(receiver.OpenChannel(id, rootKey()))

	const workers, perWorker = 8, 50
	envs := make(chan domain.EncryptedEnvelope, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				env, err := sender.Broadcast(id, domain.NewInsert("alice", uint32(i), "x"))
				if err != nil {
					t.Errorf("broadcast: %v", err)
					return
				}
				envs <- env
			}
		}()
	}
	wg.Wait()
	close(envs)

	seen := make(map[uint32]struct{})
	for env := range envs {
		_, dup := seen[env.MessageNumber]
		req.False(dup, "message number %d issued twice", env.MessageNumber)
		seen[env.MessageNumber] = struct{}{}

		_, err := receiver.Receive(env)
		req.NoError(err)
	}
	req.Len(seen, workers*perWorker)
}

func TestManager_ReplayReasonIsLoggedNotReturned(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := manager.New(logs.GetLoggerFromLevel(slog.LevelDebug))
	receiver := manager.New(log)

	id, err := sender.CreateChannel(rootKey())
	req.NoError(err)
	req.NoError(receiver.OpenChannel(id, rootKey()))

	env, err := sender.Broadcast(id, domain.NewInsert("alice", 0, "x"))
	req.NoError(err)
	_, err = receiver.Receive(env)
	req.NoError(err)

	// When the same envelope arrives again
	_, err = receiver.Receive(env)

	// Then the caller sees only the opaque error and the log carries the reason
	req.Equal(channel.ErrDecryptionFailed, err)
	req.Contains(buf.String(), "message key not found")
	req.Contains(buf.String(), "Receive failed")
}
