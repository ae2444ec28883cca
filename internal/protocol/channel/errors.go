package channel

import "errors"

var (
	// ErrDecryptionFailed is returned for every envelope that does not open.
	// It never says whether the key, the nonce or the ciphertext was wrong.
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrChannelClosed       = errors.New("channel closed")
)
