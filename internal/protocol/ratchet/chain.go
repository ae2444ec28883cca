package ratchet

import (
	"math"

	"kyro/internal/crypto"
	"kyro/internal/util/memzero"
)

// Chain is a one-directional hash ratchet.
type Chain struct {
	key   [KeySize]byte
	index uint32
	id    string
}

// NewChain starts a chain from seed. The chain id is a fingerprint of the
// seed so it can label cached keys without retaining the seed itself.
func NewChain(seed [KeySize]byte) *Chain {
	return &Chain{key: seed, id: crypto.Fingerprint(seed[:])}
}

// Advance returns the message key for the current index and moves the chain
// forward by one. The previous chain key is wiped.
func (c *Chain) Advance() ([]byte, error) {
	if c.index == math.MaxUint32 {
		return nil, ErrChainExhausted
	}
	next, mk, err := kdfCK(c.key)
	if err != nil {
		return nil, err
	}
	memzero.Key(&c.key)
	c.key = next
	c.index++
	return mk, nil
}

// Index is the number of keys derived so far, i.e. the message number the
// next Advance will serve.
func (c *Chain) Index() uint32 { return c.index }

// ID identifies the chain in the skipped-key cache.
func (c *Chain) ID() string { return c.id }

func (c *Chain) clone() *Chain {
	cp := *c
	return &cp
}

func (c *Chain) wipe() {
	if c == nil {
		return
	}
	memzero.Key(&c.key)
}
