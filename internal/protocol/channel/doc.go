// Package channel binds a ratchet.State to a collaboration channel and seals
// CollaborationOperation values into EncryptedEnvelope wire values.
//
// Every operation is validated, encoded with deterministic CBOR, and sealed
// with ChaCha20-Poly1305 under a fresh ratchet message key and a random
// 96-bit nonce. The channel id, sender id, sender ratchet key, message number
// and timestamp are bound as associated data, so an envelope cannot be
// replayed into another channel or attributed to another sender.
//
// Decryption is all-or-nothing: the receiving key is only consumed once the
// envelope authenticates and decodes. Every failure after the key lookup is
// reported as ErrDecryptionFailed without saying why.
//
// A Channel is safe for concurrent use.
package channel
