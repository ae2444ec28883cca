// Package crypto exposes the small set of primitives kyro needs outside the
// ratchet itself.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie-Hellman (GenerateX25519, DH),
//     used to derive the DH output fed into a ratchet step
//   - Short fingerprints for chain identifiers and log lines (Fingerprint)
//   - Hex helpers for keys handled by the CLI (ParseRootKey, EncodeKey)
//
// # Notes
//
// Callers should treat returned secrets as sensitive and wipe them with
// memzero.Zero when done.
package crypto
