package types

import "github.com/google/uuid"

// UserID identifies a collaboration participant.
type UserID string

// String returns the string form of the user identifier.
func (u UserID) String() string { return string(u) }

// ChannelID identifies an encrypted collaboration channel.
type ChannelID uuid.UUID

// NewChannelID returns a fresh random channel identifier.
func NewChannelID() ChannelID { return ChannelID(uuid.New()) }

// ParseChannelID parses the canonical UUID string form.
func ParseChannelID(s string) (ChannelID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ChannelID{}, err
	}
	return ChannelID(id), nil
}

// String returns the canonical UUID string form.
func (id ChannelID) String() string { return uuid.UUID(id).String() }

// Bytes returns the 16 raw bytes of the identifier.
func (id ChannelID) Bytes() []byte { return id[:] }

// MarshalText encodes the identifier as its UUID string.
func (id ChannelID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes a UUID string.
func (id *ChannelID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
