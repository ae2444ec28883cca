package crypto

import (
	"encoding/hex"
	"fmt"

	"kyro/internal/domain"
)

// EncodeKey returns the hex form ParseKey32 accepts.
func EncodeKey(k [32]byte) string { return hex.EncodeToString(k[:]) }

// ParseKey32 decodes a 64 character hex string into a 32-byte key.
func ParseKey32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("decode key: %w", err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("decode key: want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ParseRootKey decodes a hex root key.
func ParseRootKey(s string) (domain.RootKey, error) {
	k, err := ParseKey32(s)
	return domain.RootKey(k), err
}
