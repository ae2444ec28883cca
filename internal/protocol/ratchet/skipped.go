package ratchet

import (
	"container/list"

	"kyro/internal/util/memzero"
)

// skippedID locates a cached key: the chain it came from and its message number.
type skippedID struct {
	chain string
	n     uint32
}

type skippedEntry struct {
	id  skippedID
	key []byte
}

// skippedKeys is a bounded cache of message keys derived while catching up.
// Eviction is strictly oldest-first, tracked by an insertion-ordered list.
type skippedKeys struct {
	max   int
	order *list.List // of *skippedEntry, oldest at Front
	index map[skippedID]*list.Element
}

func newSkippedKeys(max int) *skippedKeys {
	return &skippedKeys{
		max:   max,
		order: list.New(),
		index: make(map[skippedID]*list.Element),
	}
}

// put stores key under id and evicts the oldest entries while over capacity.
func (s *skippedKeys) put(id skippedID, key []byte) {
	if el, ok := s.index[id]; ok {
		s.remove(el)
	}
	s.index[id] = s.order.PushBack(&skippedEntry{id: id, key: key})
	for s.order.Len() > s.max {
		s.remove(s.order.Front())
	}
}

// peek returns the key for id without removing it.
func (s *skippedKeys) peek(id skippedID) ([]byte, bool) {
	el, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return el.Value.(*skippedEntry).key, true
}

// drop removes and wipes the entry for id.
func (s *skippedKeys) drop(id skippedID) {
	if el, ok := s.index[id]; ok {
		s.remove(el)
	}
}

func (s *skippedKeys) has(id skippedID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *skippedKeys) hasChain(chain string) bool {
	for id := range s.index {
		if id.chain == chain {
			return true
		}
	}
	return false
}

func (s *skippedKeys) len() int { return s.order.Len() }

// clear wipes and removes every entry.
func (s *skippedKeys) clear() {
	for s.order.Len() > 0 {
		s.remove(s.order.Front())
	}
}

func (s *skippedKeys) remove(el *list.Element) {
	e := s.order.Remove(el).(*skippedEntry)
	delete(s.index, e.id)
	memzero.Zero(e.key)
}
