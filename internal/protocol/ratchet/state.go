package ratchet

import (
	"bytes"
	"errors"

	"kyro/internal/domain"
	"kyro/internal/util/memzero"
)

const (
	// DefaultMaxSkipped bounds the skipped-key cache.
	DefaultMaxSkipped = 1000
	// DefaultMaxSkipAhead bounds how far past the receiving chain a single
	// message number may reach.
	DefaultMaxSkipAhead = 1 << 16
)

var (
	ErrRatchetNotInitialized = errors.New("ratchet chain is not initialized")
	ErrKdfFailure            = errors.New("key derivation failed")
	ErrKeyNotFound           = errors.New("message key not found")
	ErrTooFarAhead           = errors.New("message number too far ahead of receiving chain")
	ErrChainExhausted        = errors.New("ratchet chain exhausted")
	ErrInvalidKeyLength      = errors.New("invalid key length")
)

// State is the per-channel session ratchet.
type State struct {
	rootKey   [KeySize]byte
	sending   *Chain
	receiving *Chain

	sendN uint32
	recvN uint32

	skipped      *skippedKeys
	maxSkipAhead uint32
}

// Option tunes a State at construction.
type Option func(*State)

// WithMaxSkipped sets the skipped-key cache capacity. Negative values mean zero.
func WithMaxSkipped(n int) Option {
	return func(s *State) {
		s.skipped.max = max(n, 0)
	}
}

// WithMaxSkipAhead sets how many keys a single receive may derive past the
// receiving chain index.
func WithMaxSkipAhead(n uint32) Option {
	return func(s *State) { s.maxSkipAhead = n }
}

// NewInitiator seeds the sending chain from root. It has no receiving chain.
func NewInitiator(root domain.RootKey, opts ...Option) (*State, error) {
	st, ck, err := newState(root, opts)
	if err != nil {
		return nil, err
	}
	st.sending = NewChain(ck)
	memzero.Key(&ck)
	return st, nil
}

// NewResponder seeds the receiving chain from root with the same derivation
// the initiator uses for its sending chain. It has no sending chain until a
// RatchetStep.
func NewResponder(root domain.RootKey, opts ...Option) (*State, error) {
	st, ck, err := newState(root, opts)
	if err != nil {
		return nil, err
	}
	st.receiving = NewChain(ck)
	memzero.Key(&ck)
	return st, nil
}

func newState(root domain.RootKey, opts []Option) (*State, [KeySize]byte, error) {
	st := &State{
		skipped:      newSkippedKeys(DefaultMaxSkipped),
		maxSkipAhead: DefaultMaxSkipAhead,
	}
	for _, opt := range opts {
		opt(st)
	}
	rk, ck, err := kdfRK(root, nil)
	if err != nil {
		return nil, ck, err
	}
	st.rootKey = rk
	return st, ck, nil
}

// SendingKey advances the sending chain and returns the new message key with
// its message number.
func (s *State) SendingKey() ([]byte, uint32, error) {
	if s.sending == nil {
		return nil, 0, ErrRatchetNotInitialized
	}
	mk, err := s.sending.Advance()
	if err != nil {
		return nil, 0, err
	}
	n := s.sendN
	s.sendN++
	return mk, n, nil
}

// ReceivingKey returns the message key for message n and consumes it.
func (s *State) ReceivingKey(n uint32) ([]byte, error) {
	p, err := s.PrepareReceive(n)
	if err != nil {
		return nil, err
	}
	key := bytes.Clone(p.Key())
	p.Commit()
	return key, nil
}

// PrepareReceive looks up or derives the key for message n without changing
// the state. The returned Pending must be committed once the message has been
// authenticated, or discarded.
func (s *State) PrepareReceive(n uint32) (*Pending, error) {
	if s.receiving == nil {
		return nil, ErrRatchetNotInitialized
	}
	id := skippedID{chain: s.receiving.ID(), n: n}
	if key, ok := s.skipped.peek(id); ok {
		return &Pending{st: s, n: n, key: key, cached: true, id: id}, nil
	}

	idx := s.receiving.Index()
	if n < idx {
		return nil, ErrKeyNotFound
	}
	if n-idx > s.maxSkipAhead {
		return nil, ErrTooFarAhead
	}

	p := &Pending{st: s, n: n, chain: s.receiving.clone()}
	for p.chain.Index() < n {
		i := p.chain.Index()
		mk, err := p.chain.Advance()
		if err != nil {
			p.Discard()
			return nil, err
		}
		p.derived = append(p.derived, skippedEntry{id: skippedID{chain: p.chain.ID(), n: i}, key: mk})
		// Anything older than the cache capacity would be evicted on commit.
		if len(p.derived) > s.skipped.max {
			memzero.Zero(p.derived[0].key)
			p.derived = p.derived[1:]
		}
	}
	mk, err := p.chain.Advance()
	if err != nil {
		p.Discard()
		return nil, err
	}
	p.key = mk
	return p, nil
}

// RatchetStep mixes dhOutput into the root key and replaces the sending chain.
func (s *State) RatchetStep(dhOutput []byte) error {
	if len(dhOutput) != KeySize {
		return ErrInvalidKeyLength
	}
	rk, ck, err := kdfRK(s.rootKey, dhOutput)
	if err != nil {
		return err
	}
	memzero.Key(&s.rootKey)
	s.rootKey = rk
	s.sending.wipe()
	s.sending = NewChain(ck)
	memzero.Key(&ck)
	s.sendN = 0
	return nil
}

// RatchetReceiving is the receive-side mirror of RatchetStep: it mixes the
// same DH output into the root key and replaces the receiving chain.
//
// previousChainLength is the number of messages the peer sent on the old
// chain. Keys the old chain has not served yet are derived into the skipped
// cache first, so messages still in flight stay readable through
// PrepareReceiveOn. Cached keys survive the step, subject to the cache bound.
func (s *State) RatchetReceiving(dhOutput []byte, previousChainLength uint32) error {
	if len(dhOutput) != KeySize {
		return ErrInvalidKeyLength
	}
	if s.receiving != nil {
		idx := s.receiving.Index()
		if previousChainLength > idx && previousChainLength-idx > s.maxSkipAhead {
			return ErrTooFarAhead
		}
		if err := s.skipTo(previousChainLength); err != nil {
			return err
		}
	}
	rk, ck, err := kdfRK(s.rootKey, dhOutput)
	if err != nil {
		return err
	}
	memzero.Key(&s.rootKey)
	s.rootKey = rk
	s.receiving.wipe()
	s.receiving = NewChain(ck)
	memzero.Key(&ck)
	s.recvN = 0
	return nil
}

// skipTo caches the receiving chain's keys below until.
func (s *State) skipTo(until uint32) error {
	for s.receiving.Index() < until {
		i := s.receiving.Index()
		mk, err := s.receiving.Advance()
		if err != nil {
			return err
		}
		s.skipped.put(skippedID{chain: s.receiving.ID(), n: i}, mk)
	}
	return nil
}

// ReceivingChainID identifies the current receiving chain, or "" if there
// is none.
func (s *State) ReceivingChainID() string {
	if s.receiving == nil {
		return ""
	}
	return s.receiving.ID()
}

// PrepareReceiveOn is PrepareReceive for a message of the given chain. Keys
// of earlier receiving chains are served from the skipped cache only.
func (s *State) PrepareReceiveOn(chain string, n uint32) (*Pending, error) {
	if s.receiving != nil && chain == s.receiving.ID() {
		return s.PrepareReceive(n)
	}
	id := skippedID{chain: chain, n: n}
	if key, ok := s.skipped.peek(id); ok {
		return &Pending{st: s, n: n, key: key, cached: true, id: id}, nil
	}
	if s.receiving == nil {
		return nil, ErrRatchetNotInitialized
	}
	return nil, ErrKeyNotFound
}

// Retains reports whether chain is the receiving chain or still has cached keys.
func (s *State) Retains(chain string) bool {
	if s.receiving != nil && chain == s.receiving.ID() {
		return true
	}
	return s.skipped.hasChain(chain)
}

// SendMessageNumber is the number the next SendingKey call will return.
func (s *State) SendMessageNumber() uint32 { return s.sendN }

// RecvMessageNumber is one past the highest message number derived in order.
func (s *State) RecvMessageNumber() uint32 { return s.recvN }

// CanSend reports whether a sending chain exists.
func (s *State) CanSend() bool { return s.sending != nil }

// CanReceive reports whether a receiving chain exists.
func (s *State) CanReceive() bool { return s.receiving != nil }

// SkippedLen is the number of cached skipped keys.
func (s *State) SkippedLen() int { return s.skipped.len() }

// HasSkipped reports whether the key for message n of the current receiving
// chain is cached.
func (s *State) HasSkipped(n uint32) bool {
	if s.receiving == nil {
		return false
	}
	return s.skipped.has(skippedID{chain: s.receiving.ID(), n: n})
}

// Destroy wipes all key material. The state is unusable afterwards.
func (s *State) Destroy() {
	memzero.Key(&s.rootKey)
	s.sending.wipe()
	s.receiving.wipe()
	s.sending, s.receiving = nil, nil
	s.skipped.clear()
}

// Pending is a receive that has been looked up but not yet applied.
type Pending struct {
	st  *State
	n   uint32
	key []byte

	cached bool
	id     skippedID

	chain   *Chain
	derived []skippedEntry
	done    bool
}

// Key is the message key. It is wiped by Commit or Discard.
func (p *Pending) Key() []byte { return p.key }

// Commit consumes the key and applies the chain advance and cached keys.
func (p *Pending) Commit() {
	if p.done {
		return
	}
	p.done = true
	s := p.st
	if p.cached {
		s.skipped.drop(p.id)
		return
	}
	for _, e := range p.derived {
		s.skipped.put(e.id, e.key)
	}
	s.receiving.wipe()
	s.receiving = p.chain
	s.recvN = p.n + 1
	memzero.Zero(p.key)
}

// Discard abandons the receive; the state is left as it was.
func (p *Pending) Discard() {
	if p.done {
		return
	}
	p.done = true
	if p.cached {
		return
	}
	for _, e := range p.derived {
		memzero.Zero(e.key)
	}
	p.chain.wipe()
	memzero.Zero(p.key)
}
