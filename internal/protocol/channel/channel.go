package channel

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"kyro/internal/crypto"
	"kyro/internal/domain"
	"kyro/internal/protocol/ratchet"
	"kyro/internal/util/memzero"
)

// Channel is one end of an encrypted collaboration channel.
type Channel struct {
	mu sync.Mutex

	id           domain.ChannelID
	ratchet      *ratchet.State
	participants map[domain.UserID]struct{}
	createdAt    time.Time
	senderKey    []byte
	previousLen  uint32
	closed       bool

	// chains maps a peer sender key (as sent in envelopes) to the ratchet
	// chain that decrypts it. The empty key names the initial chain.
	chains map[string]string

	log *slog.Logger
	now func() time.Time
}

type config struct {
	ratchetOpts []ratchet.Option
	log         *slog.Logger
	now         func() time.Time
}

// Option tunes a Channel at construction.
type Option func(*config)

// WithRatchetOptions forwards options to the underlying ratchet.State.
func WithRatchetOptions(opts ...ratchet.Option) Option {
	return func(c *config) { c.ratchetOpts = append(c.ratchetOpts, opts...) }
}

// WithLogger sets where rejected envelopes are reported. Reasons are only
// logged, never returned.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithClock replaces time.Now for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewInitiator opens the sending end of channel id.
func NewInitiator(id domain.ChannelID, root domain.RootKey, opts ...Option) (*Channel, error) {
	return newChannel(id, root, ratchet.NewInitiator, opts)
}

// NewResponder opens the receiving end of channel id. It can send only after
// a Rekey.
func NewResponder(id domain.ChannelID, root domain.RootKey, opts ...Option) (*Channel, error) {
	return newChannel(id, root, ratchet.NewResponder, opts)
}

func newChannel(
	id domain.ChannelID,
	root domain.RootKey,
	mk func(domain.RootKey, ...ratchet.Option) (*ratchet.State, error),
	opts []Option,
) (*Channel, error) {
	cfg := config{now: time.Now, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	st, err := mk(root, cfg.ratchetOpts...)
	if err != nil {
		return nil, fmt.Errorf("init ratchet: %w", err)
	}
	c := &Channel{
		id:           id,
		ratchet:      st,
		participants: make(map[domain.UserID]struct{}),
		createdAt:    cfg.now(),
		chains:       make(map[string]string),
		log:          cfg.log,
		now:          cfg.now,
	}
	if st.CanReceive() {
		c.chains[""] = st.ReceivingChainID()
	}
	return c, nil
}

// ID returns the channel identifier.
func (c *Channel) ID() domain.ChannelID { return c.id }

// CreatedAt returns the construction time.
func (c *Channel) CreatedAt() time.Time { return c.createdAt }

// AddParticipant records user as a member. Adding twice is a no-op.
func (c *Channel) AddParticipant(user domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.participants[user] = struct{}{}
}

// RemoveParticipant forgets user. Removing a non-member is a no-op.
func (c *Channel) RemoveParticipant(user domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.participants, user)
}

// HasParticipant reports whether user is a member.
func (c *Channel) HasParticipant(user domain.UserID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.participants[user]
	return ok
}

// Participants returns the members in sorted order.
func (c *Channel) Participants() []domain.UserID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := lo.Keys(c.participants)
	slices.Sort(out)
	return out
}

// Encrypt seals op under the next sending key.
func (c *Channel) Encrypt(op domain.CollaborationOperation) (domain.EncryptedEnvelope, error) {
	plaintext, err := MarshalOperation(op)
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	defer memzero.Zero(plaintext)

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return domain.EncryptedEnvelope{}, fmt.Errorf("nonce: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.EncryptedEnvelope{}, ErrChannelClosed
	}
	if len(c.participants) > 0 {
		if _, ok := c.participants[op.UserID]; !ok {
			return domain.EncryptedEnvelope{}, fmt.Errorf("%w: %s", ErrParticipantNotFound, op.UserID)
		}
	}

	mk, n, err := c.ratchet.SendingKey()
	if err != nil {
		return domain.EncryptedEnvelope{}, fmt.Errorf("sending key: %w", err)
	}
	defer memzero.Zero(mk)

	env := domain.EncryptedEnvelope{
		ChannelID:           c.id,
		SenderID:            op.UserID,
		SenderKey:           bytes.Clone(c.senderKey),
		Nonce:               nonce,
		MessageNumber:       n,
		PreviousChainLength: c.previousLen,
		Timestamp:           c.now().UnixMicro(),
	}
	ct, err := seal(mk, nonce, plaintext, associatedData(env))
	if err != nil {
		return domain.EncryptedEnvelope{}, fmt.Errorf("seal: %w", err)
	}
	env.Ciphertext = ct
	return env, nil
}

// Decrypt opens env. The receiving key is consumed only when the envelope
// authenticates and carries a valid operation from SenderID. Every rejection
// caused by the envelope itself is the bare ErrDecryptionFailed.
func (c *Channel) Decrypt(env domain.EncryptedEnvelope) (domain.CollaborationOperation, error) {
	if env.ChannelID != c.id || len(env.Nonce) != NonceSize {
		return domain.CollaborationOperation{}, c.reject(env, errors.New("header mismatch"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.CollaborationOperation{}, ErrChannelClosed
	}
	if len(c.participants) > 0 {
		if _, ok := c.participants[env.SenderID]; !ok {
			return domain.CollaborationOperation{}, c.reject(env, ErrParticipantNotFound)
		}
	}

	chain, ok := c.chains[string(env.SenderKey)]
	if !ok {
		if !c.ratchet.CanReceive() {
			return domain.CollaborationOperation{}, fmt.Errorf("receiving key: %w", ratchet.ErrRatchetNotInitialized)
		}
		return domain.CollaborationOperation{}, c.reject(env, errors.New("unknown sender key"))
	}
	pending, err := c.ratchet.PrepareReceiveOn(chain, env.MessageNumber)
	if err != nil {
		if errors.Is(err, ratchet.ErrRatchetNotInitialized) || errors.Is(err, ratchet.ErrKdfFailure) {
			return domain.CollaborationOperation{}, fmt.Errorf("receiving key: %w", err)
		}
		return domain.CollaborationOperation{}, c.reject(env, err)
	}
	defer pending.Discard()

	plaintext, err := open(pending.Key(), env.Nonce, env.Ciphertext, associatedData(env))
	if err != nil {
		return domain.CollaborationOperation{}, c.reject(env, errors.New("authentication failed"))
	}
	defer memzero.Zero(plaintext)

	op, err := UnmarshalOperation(plaintext)
	if err != nil {
		return domain.CollaborationOperation{}, c.reject(env, err)
	}
	if op.UserID != env.SenderID {
		return domain.CollaborationOperation{}, c.reject(env, errors.New("sender mismatch"))
	}
	pending.Commit()
	return op, nil
}

// reject logs why env was refused and returns the opaque error.
func (c *Channel) reject(env domain.EncryptedEnvelope, reason error) error {
	c.log.Debug("Envelope rejected",
		"channel_id", c.id.String(),
		"message_number", env.MessageNumber,
		"reason", reason,
	)
	return ErrDecryptionFailed
}

// Rekey mixes a fresh X25519 exchange with peer into the root key and starts
// a new sending chain. Envelopes sent afterwards carry the returned public
// key and the length of the replaced chain; the peer applies them with
// AcceptRekey.
func (c *Channel) Rekey(peer domain.X25519Public) (domain.X25519Public, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("rekey: %w", err)
	}
	defer memzero.Zero(priv[:])
	dh, err := crypto.DH(priv, peer)
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("rekey: %w", err)
	}
	defer memzero.Key(&dh)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.X25519Public{}, ErrChannelClosed
	}
	sent := c.ratchet.SendMessageNumber()
	if err := c.ratchet.RatchetStep(dh[:]); err != nil {
		return domain.X25519Public{}, fmt.Errorf("rekey: %w", err)
	}
	c.senderKey = bytes.Clone(pub[:])
	c.previousLen = sent
	return pub, nil
}

// AcceptRekey applies the peer's Rekey to the receiving side. senderPub and
// previousChainLength come from the first envelope carrying the new sender
// key. Messages of the previous chain that have not arrived yet stay
// decryptable while their keys fit in the skipped-key cache.
func (c *Channel) AcceptRekey(ours domain.X25519Private, senderPub domain.X25519Public, previousChainLength uint32) error {
	dh, err := crypto.DH(ours, senderPub)
	if err != nil {
		return fmt.Errorf("accept rekey: %w", err)
	}
	defer memzero.Key(&dh)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if err := c.ratchet.RatchetReceiving(dh[:], previousChainLength); err != nil {
		return fmt.Errorf("accept rekey: %w", err)
	}
	c.chains[string(senderPub[:])] = c.ratchet.ReceivingChainID()
	for key, chain := range c.chains {
		if !c.ratchet.Retains(chain) {
			delete(c.chains, key)
		}
	}
	return nil
}

// SendMessageNumber is the number the next Encrypt will use.
func (c *Channel) SendMessageNumber() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratchet.SendMessageNumber()
}

// Close wipes the ratchet. Further Encrypt and Decrypt calls fail.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ratchet.Destroy()
	c.participants = make(map[domain.UserID]struct{})
	clear(c.chains)
}
