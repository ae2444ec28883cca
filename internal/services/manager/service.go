package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"kyro/internal/domain"
	"kyro/internal/protocol/channel"
)

var (
	ErrChannelNotFound     = errors.New("channel not found")
	ErrChannelExists       = errors.New("channel already exists")
	ErrParticipantNotFound = channel.ErrParticipantNotFound
)

var _ domain.ChannelService = (*Manager)(nil)

// Manager routes operations to their channel.
//
// Locking: the manager lock guards the maps and is always taken before a
// channel's own lock, never after.
type Manager struct {
	log  *slog.Logger
	opts []channel.Option

	mu           sync.RWMutex
	channels     map[domain.ChannelID]*channel.Channel
	userChannels map[domain.UserID]map[domain.ChannelID]struct{}
}

// New constructs a Manager. opts are applied to every channel it creates;
// channels report rejected envelopes to log.
func New(log *slog.Logger, opts ...channel.Option) *Manager {
	return &Manager{
		log:          log,
		opts:         append([]channel.Option{channel.WithLogger(log)}, opts...),
		channels:     make(map[domain.ChannelID]*channel.Channel),
		userChannels: make(map[domain.UserID]map[domain.ChannelID]struct{}),
	}
}

// CreateChannel starts a new channel as its initiator.
func (m *Manager) CreateChannel(root domain.RootKey) (domain.ChannelID, error) {
	id := domain.NewChannelID()
	ch, err := channel.NewInitiator(id, root, m.opts...)
	if err != nil {
		return domain.ChannelID{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[id] = ch
	m.log.Info("Channel created", "channel_id", id.String())
	return id, nil
}

// OpenChannel registers the responder end of a channel a peer created.
func (m *Manager) OpenChannel(id domain.ChannelID, root domain.RootKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[id]; ok {
		return fmt.Errorf("%w: %s", ErrChannelExists, id)
	}
	ch, err := channel.NewResponder(id, root, m.opts...)
	if err != nil {
		return err
	}
	m.channels[id] = ch
	m.log.Info("Channel opened", "channel_id", id.String())
	return nil
}

// CloseChannel wipes the channel and removes it from every user's index.
func (m *Manager) CloseChannel(id domain.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	for _, user := range ch.Participants() {
		m.unindex(user, id)
	}
	ch.Close()
	delete(m.channels, id)
	m.log.Info("Channel closed", "channel_id", id.String())
	return nil
}

// JoinChannel adds user to the channel. Joining twice is a no-op.
func (m *Manager) JoinChannel(id domain.ChannelID, user domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	ch.AddParticipant(user)
	set, ok := m.userChannels[user]
	if !ok {
		set = make(map[domain.ChannelID]struct{})
		m.userChannels[user] = set
	}
	set[id] = struct{}{}
	m.log.Debug("Participant joined", "channel_id", id.String(), "user_id", user.String())
	return nil
}

// LeaveChannel removes user from the channel.
func (m *Manager) LeaveChannel(id domain.ChannelID, user domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	if !ch.HasParticipant(user) {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, user)
	}
	ch.RemoveParticipant(user)
	m.unindex(user, id)
	m.log.Debug("Participant left", "channel_id", id.String(), "user_id", user.String())
	return nil
}

func (m *Manager) unindex(user domain.UserID, id domain.ChannelID) {
	set := m.userChannels[user]
	delete(set, id)
	if len(set) == 0 {
		delete(m.userChannels, user)
	}
}

// Broadcast encrypts op for every participant of the channel.
func (m *Manager) Broadcast(id domain.ChannelID, op domain.CollaborationOperation) (domain.EncryptedEnvelope, error) {
	ch, ok := m.GetChannel(id)
	if !ok {
		return domain.EncryptedEnvelope{}, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	env, err := ch.Encrypt(op)
	if err != nil {
		m.log.Warn("Broadcast failed",
			"channel_id", id.String(),
			"kind", string(op.Kind),
			"error", err,
		)
		return domain.EncryptedEnvelope{}, err
	}
	return env, nil
}

// Receive routes env to its channel and decrypts it.
func (m *Manager) Receive(env domain.EncryptedEnvelope) (domain.CollaborationOperation, error) {
	ch, ok := m.GetChannel(env.ChannelID)
	if !ok {
		return domain.CollaborationOperation{}, fmt.Errorf("%w: %s", ErrChannelNotFound, env.ChannelID)
	}
	op, err := ch.Decrypt(env)
	if err != nil {
		m.log.Warn("Receive failed",
			"channel_id", env.ChannelID.String(),
			"message_number", env.MessageNumber,
			"error", err,
		)
		return domain.CollaborationOperation{}, err
	}
	return op, nil
}

// GetChannel returns the channel with id.
func (m *Manager) GetChannel(id domain.ChannelID) (*channel.Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	return ch, ok
}

// ChannelsFor lists the channels user has joined, in no particular order.
func (m *Manager) ChannelsFor(user domain.UserID) []domain.ChannelID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Keys(m.userChannels[user])
}

// Len is the number of open channels.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}
