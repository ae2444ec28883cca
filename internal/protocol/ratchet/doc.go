// Package ratchet implements the key schedule that protects collaboration
// channels.
//
// A Chain is a one-way hash ratchet: each Advance derives a message key and
// the next chain key from the current chain key with HKDF-Expand, so a leaked
// chain key never exposes earlier message keys. A State owns a root key, a
// sending chain and/or a receiving chain, per-direction message counters and a
// bounded FIFO cache of skipped message keys used for out-of-order delivery.
//
// RatchetStep mixes a fresh Diffie-Hellman output into the root key and
// re-seeds the sending chain (post-compromise healing on the send path).
// RatchetReceiving performs the mirror step on the receive side when the peer
// announces it has ratcheted. Unread keys of the old receiving chain move into
// the skipped cache and stay reachable through PrepareReceiveOn.
//
// Concurrency: State is NOT safe for concurrent use. Callers must serialise
// access per channel.
package ratchet
