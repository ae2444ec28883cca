package types

// RootKey is the 32-byte shared secret handed over by the key agreement.
type RootKey [32]byte

// Slice returns the key as a []byte.
func (k RootKey) Slice() []byte { return k[:] }

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }
